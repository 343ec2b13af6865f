package respbuilder

import (
	"net/http"

	"github.com/segmentio/encoding/json"
)

func WriteJSON(httpStatus int, rw http.ResponseWriter, r *http.Request, data interface{}) {
	tracer := MustExtract(r.Context())

	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Tracer-ID", tracer.AppTraceID)
	rw.WriteHeader(httpStatus)

	enc := json.NewEncoder(rw)
	err := enc.Encode(data)
	if err != nil {
		reason := ReasonMap[ErrValidation]
		errPayload, _ := json.Marshal(HTTPError{
			Err: ErrorEntity{
				Code:    reason.Code,
				Message: reason.Message,
				Debug:   err.Error(),
				TraceID: tracer.AppTraceID,
			},
		})

		_, _ = rw.Write(errPayload)
	}
}

// WriteError writes the error envelope of reasonKind using the http status of its Reason.
// The technical message of err is only included when debug is true.
func WriteError(rw http.ResponseWriter, r *http.Request, reasonKind ErrKind, err error, debug bool) {
	status := http.StatusInternalServerError
	if reason, ok := ReasonMap[reasonKind]; ok && reason.HTTPStatus > 0 {
		status = reason.HTTPStatus
	}

	resp := Error(r.Context(), reasonKind, err)
	if !debug {
		resp.Err.Debug = ""
	}

	WriteJSON(status, rw, r, resp)
}
