package render

import (
	"encoding/json"
	"net/http"

	"levee/core"

	"github.com/sirupsen/logrus"
)

type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorln("render json:", err)
	}
}

// Error write error
func Error(w http.ResponseWriter, statusCode, errCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(H{"code": errCode, "msg": err.Error()}); err != nil {
		logrus.Errorln("render error:", err)
	}
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, -1, err)
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, -1, err)
}

// Code maps a domain error to the proper status: safety and validation
// rejections are the caller's fault, oracle failures are temporary
func Code(w http.ResponseWriter, err error) {
	code, ok := err.(core.ErrorCode)
	if !ok {
		Error(w, http.StatusInternalServerError, int(core.ErrUnknown), err)
		return
	}

	status := http.StatusBadRequest
	switch {
	case code.Temporary():
		status = http.StatusServiceUnavailable
	case code == core.ErrPositionNotFound || code == core.ErrPoolNotFound:
		status = http.StatusNotFound
	}

	Error(w, status, int(code), err)
}
