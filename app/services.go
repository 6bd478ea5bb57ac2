// Package app is the demo application: a pair of service providers, the
// services they bind and the typed facades used to reach them.
package app

import "strings"

// Messenger is the capability exposed by the "standard_provider" service.
type Messenger interface {
	Message(msg string) string
}

// DemoService echoes messages back.
type DemoService struct{}

func (DemoService) Message(msg string) string { return msg }

// Formatter turns a name into display text.
type Formatter interface {
	Format(s string) string
}

type plainFormatter struct{}

func (plainFormatter) Format(s string) string { return s }

type shoutFormatter struct{}

func (shoutFormatter) Format(s string) string { return strings.ToUpper(s) }

// Greeter builds greetings with whatever Formatter the container hands it.
type Greeter struct {
	formatter Formatter
}

func (g *Greeter) Greet(name string) string {
	return "Hello, " + g.formatter.Format(name) + "!"
}

// Report is the service bound by the deferred provider.
type Report struct {
	Title string
}
