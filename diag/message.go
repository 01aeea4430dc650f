package diag

import "viper/token"

// Kind enumerates the diagnostic categories the front end distinguishes;
// the category names the tag each message prints under.
type Kind int

const (
	KindParse Kind = iota
	KindName
	KindType
	KindAccess
	KindUnknownType
	KindImport
	KindUnusedStatement
	KindUnusedPureCall
)

var kindStrings = map[Kind]string{
	KindParse:           "Syntax",
	KindName:            "Name",
	KindType:            "Type",
	KindAccess:          "Access",
	KindUnknownType:     "Type",
	KindImport:          "Import",
	KindUnusedStatement: "Unused",
	KindUnusedPureCall:  "Unused",
}

// Message is the shared interface for everything the logger can display.
type Message interface {
	isError() bool
	display()
}

// CompileMessage is a diagnostic tied to a specific source span -- the vast
// majority of front-end diagnostics take this shape.
type CompileMessage struct {
	File    string
	Span    *token.Span
	Kind    Kind
	Message string
	IsError bool
}

func (cm *CompileMessage) isError() bool { return cm.IsError }

// ConfigError is a diagnostic unrelated to any particular source file (a
// bad project config, a missing search path, ...).
type ConfigError struct {
	Category string
	Message  string
}

func (ce *ConfigError) isError() bool { return true }
