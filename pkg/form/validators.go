package form

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Validator checks the value of one field.
type Validator interface {
	Validate(value any) error
}

// ValidatorFunc adapts a plain function to Validator.
type ValidatorFunc func(value any) error

func (f ValidatorFunc) Validate(value any) error { return f(value) }

// ValidationError is a failed check, optionally tagged with the field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// predicate builds a Validator that fails with msg when ok reports false.
// Blank values pass unless checkBlank is set, so only Required rejects them.
func predicate(msg, fallback string, checkBlank bool, ok func(any) bool) Validator {
	if msg == "" {
		msg = fallback
	}
	return ValidatorFunc(func(value any) error {
		if !checkBlank && isBlank(value) {
			return nil
		}
		if ok(value) {
			return nil
		}
		return ValidationError{Message: msg}
	})
}

// Required rejects nil and whitespace-only values. Zero and false pass.
func Required(msg string) Validator {
	return predicate(msg, "This field is required", true, func(v any) bool {
		return !isBlank(v)
	})
}

// MinLength counts runes, not bytes.
func MinLength(n int, msg string) Validator {
	return predicate(msg, fmt.Sprintf("The minimum length for this field is %d", n), false, func(v any) bool {
		return runeLen(v) >= n
	})
}

func MaxLength(n int, msg string) Validator {
	return predicate(msg, fmt.Sprintf("The maximum length for this field is %d", n), false, func(v any) bool {
		return runeLen(v) <= n
	})
}

// Pattern panics when pattern does not compile; ParseRules checks it first.
func Pattern(pattern string, msg string) Validator {
	re := regexp.MustCompile(pattern)
	return predicate(msg, "The value in this field is invalid", false, func(v any) bool {
		return re.MatchString(stringOf(v))
	})
}

var emailRE = regexp.MustCompile(`^[\w.%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func Email(msg string) Validator {
	return predicate(msg, `This field should be an e-mail address in the format "user@example.com"`, false, func(v any) bool {
		return emailRE.MatchString(stringOf(v))
	})
}

// URL accepts absolute URLs only.
func URL(msg string) Validator {
	return predicate(msg, `This field should be a URL in the format "http://www.example.com"`, false, func(v any) bool {
		u, err := url.Parse(stringOf(v))
		return err == nil && u.Scheme != "" && u.Host != ""
	})
}

// Numeric accepts strings made of decimal digits.
func Numeric(msg string) Validator {
	return predicate(msg, "This field should only contain numbers", false, func(v any) bool {
		return strings.IndexFunc(stringOf(v), func(r rune) bool { return !unicode.IsDigit(r) }) < 0
	})
}

func Min(n any, msg string) Validator {
	bound := numberOf(n)
	return predicate(msg, fmt.Sprintf("The minimum value for this field is %v", n), false, func(v any) bool {
		return numberOf(v) >= bound
	})
}

func Max(n any, msg string) Validator {
	bound := numberOf(n)
	return predicate(msg, fmt.Sprintf("The maximum value for this field is %v", n), false, func(v any) bool {
		return numberOf(v) <= bound
	})
}

func Positive(msg string) Validator {
	return predicate(msg, "The value in this field must be greater than 0", false, func(v any) bool {
		return numberOf(v) > 0
	})
}

// Custom wraps fn as a Validator.
func Custom(fn func(value any) error) Validator { return ValidatorFunc(fn) }

// ParseRules turns a rule string like "required,min=2,email" into
// validators. For numeric samples min and max bound the value; otherwise
// they bound its length.
func ParseRules(rules string, sample any) ([]Validator, error) {
	numeric := isNumberKind(reflect.TypeOf(sample))
	var out []Validator
	for _, rule := range strings.Split(rules, ",") {
		rule = strings.TrimSpace(rule)
		if rule == "" {
			continue
		}
		name, arg, _ := strings.Cut(rule, "=")
		v, err := ruleValidator(name, arg, numeric)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func ruleValidator(name, arg string, numeric bool) (Validator, error) {
	switch name {
	case "required":
		return Required(""), nil
	case "email":
		return Email(""), nil
	case "url":
		return URL(""), nil
	case "numeric":
		return Numeric(""), nil
	case "positive":
		return Positive(""), nil
	case "pattern", "regex":
		if _, err := regexp.Compile(arg); err != nil {
			return nil, err
		}
		return Pattern(arg, ""), nil
	case "min", "max":
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, err
		}
		switch {
		case numeric && name == "min":
			return Min(f, ""), nil
		case numeric:
			return Max(f, ""), nil
		case name == "min":
			return MinLength(int(f), ""), nil
		default:
			return MaxLength(int(f), ""), nil
		}
	case "minlen", "minlength", "maxlen", "maxlength":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(name, "min") {
			return MinLength(n, ""), nil
		}
		return MaxLength(n, ""), nil
	}
	return nil, fmt.Errorf("unknown rule")
}

func isNumberKind(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return len(v) == 0
	}
	return false
}

func runeLen(value any) int {
	return len([]rune(stringOf(value)))
}

func stringOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// numberOf converts record values to float64. Unparseable input is 0.
func numberOf(value any) float64 {
	rv := reflect.ValueOf(value)
	switch {
	case !rv.IsValid():
		return 0
	case rv.CanInt():
		return float64(rv.Int())
	case rv.CanUint():
		return float64(rv.Uint())
	case rv.CanFloat():
		return rv.Float()
	case rv.Kind() == reflect.String:
		f, _ := strconv.ParseFloat(rv.String(), 64)
		return f
	}
	return 0
}
