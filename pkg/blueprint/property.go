package blueprint

import (
	"fmt"
	"strings"
)

// Unit is the physical unit of a property value
type Unit int

const (
	UnitNone Unit = iota
	UnitOhm
	UnitVolt
	UnitAmpere
	UnitFarad
	UnitHenry
	UnitHertz
	UnitWatt
	UnitSecond
)

var unitNames = map[Unit]string{
	UnitNone:   "none",
	UnitOhm:    "ohm",
	UnitVolt:   "volt",
	UnitAmpere: "ampere",
	UnitFarad:  "farad",
	UnitHenry:  "henry",
	UnitHertz:  "hertz",
	UnitWatt:   "watt",
	UnitSecond: "second",
}

// Symbol returns the SI symbol used when displaying a value
func (u Unit) Symbol() string {
	switch u {
	case UnitOhm:
		return "Ω"
	case UnitVolt:
		return "V"
	case UnitAmpere:
		return "A"
	case UnitFarad:
		return "F"
	case UnitHenry:
		return "H"
	case UnitHertz:
		return "Hz"
	case UnitWatt:
		return "W"
	case UnitSecond:
		return "s"
	default:
		return ""
	}
}

func (u Unit) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// ParseUnit converts a template unit name. An empty name is UnitNone.
func ParseUnit(s string) (Unit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return UnitNone, nil
	}
	for u, name := range unitNames {
		if name == s {
			return u, nil
		}
	}
	return UnitNone, fmt.Errorf("blueprint: unknown unit %q", s)
}

// Kind is the category of a property
type Kind int

const (
	KindNone Kind = iota
	KindResistance
	KindVoltage
	KindCurrent
	KindCapacitance
	KindInductance
	KindFrequency
	KindPower
	KindTime
	KindText
)

var kindNames = map[Kind]string{
	KindNone:        "none",
	KindResistance:  "resistance",
	KindVoltage:     "voltage",
	KindCurrent:     "current",
	KindCapacitance: "capacitance",
	KindInductance:  "inductance",
	KindFrequency:   "frequency",
	KindPower:       "power",
	KindTime:        "time",
	KindText:        "text",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a template property type. An empty name is KindNone.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindNone, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("blueprint: unknown property type %q", s)
}

// Property is a named, typed value attached to a blueprint
type Property struct {
	Name  string
	Value string
	Unit  Unit
	Kind  Kind
}

func (p Property) String() string {
	if sym := p.Unit.Symbol(); sym != "" {
		return fmt.Sprintf("%s=%s%s", p.Name, p.Value, sym)
	}
	return fmt.Sprintf("%s=%s", p.Name, p.Value)
}
