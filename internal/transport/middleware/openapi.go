package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// OpenAPIValidator rejects requests that do not match the API document. Paths in the
// document are relative to prefix. Requests to undocumented paths pass through untouched.
type OpenAPIValidator struct {
	router routers.Router
	prefix string
	logger *slog.Logger
}

func NewOpenAPIValidator(spec []byte, prefix string, logger *slog.Logger) (*OpenAPIValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, err
	}
	doc.Servers = nil

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, err
	}
	return &OpenAPIValidator{router: router, prefix: prefix, logger: logger}, nil
}

func (v *OpenAPIValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, v.prefix) || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		routed := r.Clone(r.Context())
		routed.URL.Path = strings.TrimPrefix(r.URL.Path, v.prefix)
		routed.URL.RawPath = ""

		route, pathParams, err := v.router.FindRoute(routed)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    routed,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				MultiError:         false,
			},
		}
		err = openapi3filter.ValidateRequest(r.Context(), input)
		// the validator consumed the body and left a fresh reader on the clone
		r.Body = routed.Body
		if err != nil {
			v.writeValidationError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (v *OpenAPIValidator) writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	message := "request does not match the API schema"
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		switch {
		case reqErr.Parameter != nil:
			message = "invalid parameter " + reqErr.Parameter.Name
		case reqErr.RequestBody != nil:
			message = "invalid request body"
		}
	}
	v.logger.WarnContext(r.Context(), "openapi validation failed", "path", r.URL.Path, "error", err)

	status, body := internal.NewValidationError(message, internal.ErrCodeValidationFailed).ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
