// Package inline parses dupecheck suppression directives out of source
// comments. A directive is the marker `dupecheck:` followed by a
// command, anywhere in a line:
//
//	// dupecheck:ignore
//	# dupecheck:ignore(generated lookup table)
//	// dupecheck:ignore-file
//
// `ignore` suppresses findings touching the directive's own line or the
// line below it, so it can sit above a function or at the end of a
// statement. `ignore-file` suppresses every finding in the file.
package inline

import (
	"errors"
	"fmt"
	"strings"
)

type InlineCommand string

const (
	Ignore     InlineCommand = "ignore"
	IgnoreFile InlineCommand = "ignore-file"
	Invalid    InlineCommand = "invalid"
)

const dupecheckPrefix = "dupecheck:"

var (
	ErrorInvalidCommand                       = errors.New("invalid command")
	ErrorInvalidArgsMissingClosingParantheses = errors.New("missing closing paranthesis for argument list")
	ErrorInvalidArgsMissingArguments          = errors.New("must provide a reason inside the parentheses")
)

type InlineError struct {
	Err          error
	LineNumber   int
	ColumnNumber int
	Line         string
}

func (e InlineError) Error() string {
	return e.Err.Error()
}

func (e InlineError) Format() string {
	// Create the caret pointer line
	caret := strings.Repeat(" ", e.ColumnNumber-1) + "^"

	return fmt.Sprintf("%s\n> %2d | %s\n       %s", e.Err.Error(), e.LineNumber, e.Line, caret)
}

type Directive struct {
	// The command used
	Command InlineCommand
	// Optional reason from the parenthesized argument
	Reason string
	// Line number where the directive was found
	LineNumber int
}

type Directives []Directive

// SuppressesFile reports whether any directive ignores the whole file.
func (ds Directives) SuppressesFile() bool {
	for _, d := range ds {
		if d.Command == IgnoreFile {
			return true
		}
	}
	return false
}

// Suppresses reports whether a finding covering [startLine, endLine] is
// suppressed. An ignore directive covers its own line and the next one.
func (ds Directives) Suppresses(startLine, endLine int) bool {
	for _, d := range ds {
		switch d.Command {
		case IgnoreFile:
			return true
		case Ignore:
			if startLine <= d.LineNumber+1 && endLine >= d.LineNumber {
				return true
			}
		}
	}
	return false
}

// consumeCommandName splits the text after the marker into a command
// and its remainder. ignore-file is matched before ignore because of
// the shared prefix.
func consumeCommandName(commandArgs string) (InlineCommand, string) {
	if len(commandArgs) == 0 {
		return Invalid, ""
	}

	if strings.HasPrefix(commandArgs, string(IgnoreFile)) {
		return IgnoreFile, commandArgs[len(IgnoreFile):]
	} else if strings.HasPrefix(commandArgs, string(Ignore)) {
		return Ignore, commandArgs[len(Ignore):]
	}
	return Invalid, ""
}

// consumeReason reads an optional parenthesized reason. Directives
// without parentheses are valid and carry no reason.
func consumeReason(argString string) (string, error) {
	if len(argString) == 0 || argString[0] != '(' {
		return "", nil
	}
	endIndex := strings.Index(argString, ")")
	if endIndex == -1 {
		return "", ErrorInvalidArgsMissingClosingParantheses
	}

	reason := strings.TrimSpace(argString[1:endIndex])
	if reason == "" {
		return "", ErrorInvalidArgsMissingArguments
	}
	return reason, nil
}

// FindDirectives scans a document for suppression directives.
func FindDirectives(document string) (Directives, []InlineError) {
	lines := strings.Split(document, "\n")
	directives := make(Directives, 0)
	var inlineErrors []InlineError

	for lineNumber, line := range lines {
		index := strings.Index(line, dupecheckPrefix)
		if index == -1 {
			continue
		}

		command, argString := consumeCommandName(line[index+len(dupecheckPrefix):])
		if command == Invalid {
			inlineErrors = append(inlineErrors, InlineError{
				Err:          ErrorInvalidCommand,
				LineNumber:   lineNumber + 1,
				ColumnNumber: index + len(dupecheckPrefix) + 1,
				Line:         line,
			})
			continue
		}

		reason, err := consumeReason(argString)
		if err != nil {
			inlineErrors = append(inlineErrors, InlineError{
				Err:          err,
				LineNumber:   lineNumber + 1,
				ColumnNumber: index + len(dupecheckPrefix) + len(command) + 1,
				Line:         line,
			})
			continue
		}

		directives = append(directives, Directive{
			Command:    command,
			Reason:     reason,
			LineNumber: lineNumber + 1,
		})
	}
	return directives, inlineErrors
}
