package dialogue

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type ValidationKind string

const (
	ValidateNone     ValidationKind = "none"
	ValidateRequired ValidationKind = "required"
	ValidateNumber   ValidationKind = "number"
	ValidatePhone    ValidationKind = "phone"
	ValidateEmail    ValidationKind = "email"
)

// ParseValidationKind accepts the configuration spelling. Empty means none.
func ParseValidationKind(s string) (ValidationKind, error) {
	switch k := ValidationKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return ValidateNone, nil
	case ValidateNone, ValidateRequired, ValidateNumber, ValidatePhone, ValidateEmail:
		return k, nil
	default:
		return "", fmt.Errorf("unknown validation kind %q", s)
	}
}

type Step struct {
	Prompt       string
	Variable     string
	Validation   ValidationKind
	ErrorMessage string
	QuickReplies []string
}

type Definition struct {
	Name  string
	Steps []Step
}

func (d Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("dialogue without a name")
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("dialogue %q has no steps", d.Name)
	}
	for i, s := range d.Steps {
		if strings.TrimSpace(s.Prompt) == "" {
			return fmt.Errorf("dialogue %q step %d has no prompt", d.Name, i)
		}
		if _, err := ParseValidationKind(string(s.Validation)); err != nil {
			return fmt.Errorf("dialogue %q step %d: %w", d.Name, i, err)
		}
	}
	return nil
}

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Session is the live state of one user's dialogue.
type Session struct {
	UserID       string
	DialogueName string
	Channel      string
	StepIndex    int
	Variables    map[string]interface{}
	Status       Status
	StartedAt    time.Time
	UpdatedAt    time.Time
}

// Validation is the outcome of checking one answer. Value holds the
// normalized input (an int for number steps) when Valid.
type Validation struct {
	Valid   bool
	Value   interface{}
	Message string
}

var (
	phonePattern = regexp.MustCompile(`^[\+]?[\d\s\-\(\)]{8,15}$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Validate checks trimmed input against kind. It never returns an error;
// a rejected answer carries the user-facing message.
func Validate(kind ValidationKind, input string) Validation {
	value := strings.TrimSpace(input)

	switch kind {
	case ValidateRequired:
		if value == "" {
			return Validation{Message: "Este campo es requerido."}
		}
	case ValidateNumber:
		n, err := strconv.Atoi(value)
		if err != nil {
			return Validation{Message: "Debe ser un número válido."}
		}
		if n <= 0 {
			return Validation{Message: "Debe ser un número mayor a 0."}
		}
		return Validation{Valid: true, Value: n}
	case ValidatePhone:
		if !phonePattern.MatchString(value) {
			return Validation{Message: "Ingresa un teléfono válido."}
		}
	case ValidateEmail:
		if !emailPattern.MatchString(value) {
			return Validation{Message: "Ingresa un email válido."}
		}
	}
	return Validation{Valid: true, Value: value}
}
