package mailrelay

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/jsamuelsen11/layerflow/internal/domain"
)

// maxProblemBytes caps how much of an error body is read.
const maxProblemBytes = 64 << 10

// relayProblem is the problem-details body the relay sends with errors.
type relayProblem struct {
	Detail string `json:"detail"`
	Errors []struct {
		Location string `json:"location"`
		Message  string `json:"message"`
	} `json:"errors"`
}

// statusError maps an unexpected relay status to a domain error:
//
//	404                 domain.ErrNotFound
//	400, 422            *domain.ValidationError, or domain.ErrValidation without field errors
//	401, 403, 429, 5xx  domain.ErrUnavailable
//
// Credential failures count as unavailable because nothing in the mail
// itself can fix them. Other statuses are returned unclassified.
func statusError(resp *http.Response) error {
	p := readProblem(resp)
	msg := cmp.Or(p.Detail, http.StatusText(resp.StatusCode))

	switch code := resp.StatusCode; {
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: %s: %w", ServiceName, msg, domain.ErrNotFound)
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		if len(p.Errors) > 0 {
			return p.validationError()
		}
		return fmt.Errorf("%s: %s: %w", ServiceName, msg, domain.ErrValidation)
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%s rejected credentials: %s: %w", ServiceName, msg, domain.ErrUnavailable)
	case code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %s: %w", ServiceName, msg, domain.ErrUnavailable)
	default:
		return fmt.Errorf("%s: unexpected status %d: %s", ServiceName, code, msg)
	}
}

// transportError marks a call that produced no usable response, including
// breaker rejections, as unavailable while keeping the cause matchable.
func transportError(err error) error {
	return fmt.Errorf("%s: %w: %w", ServiceName, domain.ErrUnavailable, err)
}

// readProblem returns the zero value for anything that is not a readable
// problem+json body.
func readProblem(resp *http.Response) relayProblem {
	var p relayProblem
	if resp.Body == nil {
		return p
	}
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err != nil || mt != "application/problem+json" {
		return p
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProblemBytes)).Decode(&p); err != nil {
		return relayProblem{}
	}
	return p
}

// validationError names violations by message field ("to[0]", "subject").
func (p relayProblem) validationError() *domain.ValidationError {
	verr := &domain.ValidationError{Path: "mail"}
	for _, e := range p.Errors {
		verr.Violations = append(verr.Violations, domain.Violation{
			Field:   strings.TrimPrefix(e.Location, "body."),
			Rule:    "relay",
			Message: e.Message,
		})
	}
	return verr
}
