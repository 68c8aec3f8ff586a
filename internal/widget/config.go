package widget

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBusinessName = "Business"
	DefaultCustomerName = "there"

	DefaultDelaySeconds = 2.0
	MaxDelaySeconds     = 30.0
)

// Fields are the raw, user-editable form values.
type Fields struct {
	BusinessName  string `yaml:"businessName"`
	CustomerName  string `yaml:"customerName"`
	Delay         string `yaml:"delay"`
	SystemMessage string `yaml:"systemMessage"`
	PromptContext string `yaml:"promptContext"`
	Model         string `yaml:"model"`
}

// Configuration is the resolved snapshot used for one exchange.
type Configuration struct {
	BusinessName  string
	CustomerName  string
	DelaySeconds  float64
	SystemMessage string
	PromptContext string
	Model         string
}

// Delay converts the delay bound to a duration.
func (c Configuration) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// Resolve applies defaults and parses the delay. It never fails.
func Resolve(f Fields) Configuration {
	return Configuration{
		BusinessName:  orDefault(f.BusinessName, DefaultBusinessName),
		CustomerName:  orDefault(f.CustomerName, DefaultCustomerName),
		DelaySeconds:  ParseDelay(f.Delay),
		SystemMessage: f.SystemMessage,
		PromptContext: f.PromptContext,
		Model:         strings.TrimSpace(f.Model),
	}
}

var floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseDelay reads the leading number of raw in seconds. Input without a
// leading number yields DefaultDelaySeconds; numbers are clamped to
// [0, MaxDelaySeconds].
func ParseDelay(raw string) float64 {
	raw = strings.TrimSpace(raw)

	var value float64
	switch {
	case strings.HasPrefix(raw, "Infinity"), strings.HasPrefix(raw, "+Infinity"):
		value = math.Inf(1)
	case strings.HasPrefix(raw, "-Infinity"):
		value = math.Inf(-1)
	default:
		prefix := floatPrefix.FindString(raw)
		if prefix == "" {
			return DefaultDelaySeconds
		}
		parsed, err := strconv.ParseFloat(prefix, 64)
		if err != nil && !isRangeErr(err) {
			return DefaultDelaySeconds
		}
		value = parsed
	}

	return math.Max(0, math.Min(MaxDelaySeconds, value))
}

func isRangeErr(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// FieldSource supplies the current form values. Controllers read it on
// every action, so edits apply without an explicit save.
type FieldSource interface {
	Fields() Fields
}

// Form is a FieldSource safe for use from the UI goroutine and handler
// goroutines at once.
type Form struct {
	mu     sync.RWMutex
	fields Fields
}

// NewForm creates a form with initial values.
func NewForm(initial Fields) *Form {
	return &Form{fields: initial}
}

// Fields returns a copy of the current values.
func (f *Form) Fields() Fields {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.fields
}

// Update edits the values in place.
func (f *Form) Update(edit func(*Fields)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	edit(&f.fields)
}

// Contact is the header shown above the conversation.
type Contact struct {
	Name   string
	Avatar string
}

// ContactFor derives the header from the business name.
func ContactFor(businessName string) Contact {
	name := orDefault(businessName, DefaultBusinessName)
	first := []rune(strings.TrimSpace(name))[0]
	return Contact{Name: name, Avatar: strings.ToUpper(string(first))}
}
