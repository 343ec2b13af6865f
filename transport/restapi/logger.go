package restapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/satori/uuid"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/lamaran/pkg/respbuilder"
	"github.com/yusufsyaifudin/lamaran/pkg/tracer"
	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

const requestTimeout = 30 * time.Second

func toSimpleMap(h http.Header) map[string]string {
	out := map[string]string{}
	for k, v := range h {
		out[k] = strings.Join(v, " ")
	}

	return out
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// multipartSummary lists the parsed form values and only the name and size of uploaded files.
func multipartSummary(r *http.Request) map[string]interface{} {
	if r.MultipartForm == nil {
		return map[string]interface{}{"size": r.ContentLength}
	}

	files := map[string]interface{}{}
	for key, headers := range r.MultipartForm.File {
		list := make([]map[string]interface{}, 0, len(headers))
		for _, fh := range headers {
			list = append(list, map[string]interface{}{
				"filename": fh.Filename,
				"size":     fh.Size,
			})
		}

		files[key] = list
	}

	return map[string]interface{}{
		"size":   r.ContentLength,
		"values": r.MultipartForm.Value,
		"files":  files,
	}
}

// peekBody buffers at most limit bytes of the request body for the access log and restores r.Body.
// A larger body is left for the handler to reject, complete is false.
func peekBody(r *http.Request, limit int64) (body []byte, complete bool, err error) {
	body, err = io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(nil))
		return nil, true, err
	}

	if int64(len(body)) > limit {
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(body), r.Body), r.Body}

		return body[:limit], false, nil
	}

	err = r.Body.Close()
	if err != nil {
		err = fmt.Errorf("cannot close request body: %w", err)
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, true, err
}

func requestLogger(skipFunc func(r *http.Request) bool, maxBodyBytes int64, next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if skipFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		var globalErr error
		t1 := time.Now().UTC()
		ctx := r.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		traceID := uuid.NewV4().String()

		propagateData := tracer.LogData{
			RemoteAddr: r.RemoteAddr,
			TraceID:    traceID,
		}

		var logTraceData *ylog.Tracer
		logTraceData, err := ylog.NewTracer(propagateData, ylog.WithTag("tracer"))
		if err != nil {
			// this should never happen, but once it happens, we need to log in the response
			globalErr = multierr.Append(globalErr, fmt.Errorf("error prepare log tracer data: %w", err))
		}

		responseTracer := respbuilder.Tracer{
			RemoteAddr: r.RemoteAddr,
			AppTraceID: traceID,
		}

		// Inject logger and response tracer at same time
		ctx = ylog.Inject(ctx, logTraceData)
		ctx = respbuilder.Inject(ctx, responseTracer)
		r = r.WithContext(ctx)

		// multipart bodies carry the uploaded CV, they are summarized after the handler parsed them
		multipart := isMultipart(r)

		reqBody := make([]byte, 0)
		bodyComplete := true
		if r.Body != nil && !multipart {
			reqBody, bodyComplete, err = peekBody(r, maxBodyBytes)
			if err != nil {
				globalErr = multierr.Append(globalErr, fmt.Errorf("error read request body: %w", err))
			}
		}

		// continue serve, and record the response
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, r)

		var reqBodyStr = string(reqBody)
		var reqBodyObj interface{}
		switch {
		case multipart:
			reqBodyStr = ""
			reqBodyObj = multipartSummary(r)
		case !bodyComplete:
			reqBodyStr = fmt.Sprintf("<more than %d bytes>", maxBodyBytes)
		case len(reqBody) == 0:
		default:
			if _err := json.Unmarshal(reqBody, &reqBodyObj); _err == nil {
				reqBodyStr = "" // set to empty string if valid json payload
			}
		}

		// read, copy, restore
		respBody := rec.Body.Bytes()

		var respBodyStr = string(respBody)
		var respBodyData interface{}
		if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
			if _err := json.Unmarshal(respBody, &respBodyData); _err != nil {
				globalErr = multierr.Append(globalErr, fmt.Errorf("error marshal response body: %w", _err))
			} else {
				respBodyStr = "" // set to empty string if success as json object
			}
		} else {
			respBodyStr = fmt.Sprintf("<%d bytes of %s>", len(respBody), rec.Header().Get("Content-Type"))
		}

		for k, v := range rec.Header() {
			w.Header()[k] = v
		}

		w.WriteHeader(rec.Code)
		_, err = bytes.NewReader(respBody).WriteTo(w)
		if err != nil {
			globalErr = multierr.Append(globalErr, fmt.Errorf("error write response body: %w", err))
		}

		errStr := ""
		if globalErr != nil {
			errStr = globalErr.Error()
		}

		// log request
		ylog.Access(ctx, ylog.AccessLogData{
			Path: r.RequestURI,
			Request: ylog.HTTPData{
				Header:     toSimpleMap(r.Header),
				DataObject: reqBodyObj,
				DataString: reqBodyStr,
			},
			Response: ylog.HTTPData{
				Header:     toSimpleMap(rec.Header()),
				DataObject: respBodyData,
				DataString: respBodyStr,
			},
			Error:       errStr,
			ElapsedTime: time.Since(t1).Milliseconds(),
		})
	}
}
