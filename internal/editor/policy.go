package editor

import "fmt"

// TypeSwitch decides what a choice question gets when it comes back from
// an option-less type with no options
type TypeSwitch string

const (
	TypeSwitchRestore TypeSwitch = "restore" // last known-valid options, else placeholders
	TypeSwitchReset   TypeSwitch = "reset"   // always two placeholders
)

// Validation decides which options must have text on commit
type Validation string

const (
	ValidateAll Validation = "all" // every option
	ValidateAny Validation = "any" // at least one option
)

// ReconcileMode controls how far canonical option data is trusted
type ReconcileMode string

const (
	// ModeCompat trusts the canonical list when its first element has text
	ModeCompat ReconcileMode = "compat"
	// ModeStrict trusts the canonical list only when every element has text
	ModeStrict ReconcileMode = "strict"
)

// Policy captures the behaviour that differed between the modal, inline and
// full-node editors so one implementation can serve all three.
type Policy struct {
	TypeSwitch TypeSwitch    `json:"typeSwitch" yaml:"type_switch"`
	Validation Validation    `json:"validation" yaml:"validation"`
	Reconcile  ReconcileMode `json:"reconcile" yaml:"reconcile"`
}

var (
	// ModalPolicy matches the floating modal editor
	ModalPolicy = Policy{TypeSwitch: TypeSwitchReset, Validation: ValidateAll, Reconcile: ModeCompat}
	// InlinePolicy matches the inline edit node
	InlinePolicy = Policy{TypeSwitch: TypeSwitchRestore, Validation: ValidateAny, Reconcile: ModeCompat}
	// DefaultPolicy is used when nothing is configured
	DefaultPolicy = Policy{TypeSwitch: TypeSwitchRestore, Validation: ValidateAll, Reconcile: ModeCompat}
)

// PolicyByName resolves a preset name
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", "default":
		return DefaultPolicy, nil
	case "modal":
		return ModalPolicy, nil
	case "inline":
		return InlinePolicy, nil
	}
	return Policy{}, fmt.Errorf("unknown editor policy %q", name)
}

// Validate checks every field holds a known value
func (p Policy) Validate() error {
	switch p.TypeSwitch {
	case TypeSwitchRestore, TypeSwitchReset:
	default:
		return fmt.Errorf("unknown type switch policy %q", p.TypeSwitch)
	}
	switch p.Validation {
	case ValidateAll, ValidateAny:
	default:
		return fmt.Errorf("unknown option validation %q", p.Validation)
	}
	switch p.Reconcile {
	case ModeCompat, ModeStrict:
	default:
		return fmt.Errorf("unknown reconcile mode %q", p.Reconcile)
	}
	return nil
}
