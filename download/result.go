package download

import (
	"errors"
	"fmt"
)

// Outcome classifies how a single fetch ended.
type Outcome int

const (
	Committed Outcome = iota
	ValidationRejection
	DuplicateRejection
	ConnectionError
	UnspecifiedFailure
)

func (o Outcome) String() string {
	switch o {
	case Committed:
		return "committed"
	case ValidationRejection:
		return "validation-rejection"
	case DuplicateRejection:
		return "duplicate-rejection"
	case ConnectionError:
		return "connection-error"
	case UnspecifiedFailure:
		return "unspecified-failure"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result reports what Store.Fetch did with one url.
type Result struct {
	URL      string
	Outcome  Outcome
	Filename string // Final name, relative to the store directory. Committed only.
	Path     string // Final path. Committed only.
	Message  string // Human readable summary.
	Err      error  // Underlying error, if any.
}

// OK returns true if the image was saved.
func (r *Result) OK() bool {
	return r.Outcome == Committed
}

// classify maps an error from the pipeline to the outcome it represents.
func classify(err error) Outcome {
	switch {
	case errors.Is(err, ErrTooLarge):
		return ValidationRejection
	case errors.Is(err, ErrConnection):
		return ConnectionError
	default:
		return UnspecifiedFailure
	}
}

// failure builds the result for a fetch that ended with err.
func failure(u string, err error) *Result {
	o := classify(err)

	var msg string
	switch o {
	case ValidationRejection:
		msg = fmt.Sprintf("File too large for %s: %v", u, err)
	case ConnectionError:
		msg = fmt.Sprintf("Connection error for %s: %v", u, err)
	default:
		msg = fmt.Sprintf("An error occurred for %s: %v", u, err)
	}

	return &Result{
		URL:     u,
		Outcome: o,
		Message: msg,
		Err:     err,
	}
}
