package core

// error_messages.go maps technical errors to user-facing messages with a
// code that operators can quote to support.
//
// Pipeline errors are matched by type first so their detail (missing
// column names, roster size) survives into the message. Anything else is
// matched case-insensitively against errorPatterns; the first hit wins.
//
// Codes:
//
//	FILE001 file too large        FILE002 invalid file format
//	FILE004 no file provided      FILE005 no data rows
//	VAL004  missing headers       VAL007  no valid records
//	DST001  wrong roster size     UPL002  too many runs in flight
//	UPL004  request cancelled     UPL005  request timed out
//	AGT001  agent not found       AGT002  duplicate agent email
//	VAL001  agent field errors    VAL002  malformed JSON body
//	VAL003  request body too large
//	DST002  distribution not found
//	DST003  roster changed mid-run
//	DB004   connection refused    DB006   database timeout
//	RATE001 rate limited          ERR000  anything else

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file uploaded",
			Action:  "Select a CSV or XLSX file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "Too many distributions in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "validation failed",
		msg: UserMessage{
			Message: "Validation failed",
			Action:  "Correct the listed fields and try again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Request body is too large",
			Action:  "Send a smaller request",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "Request body is not valid JSON",
			Action:  "Send a JSON object with the agent fields",
			Code:    "VAL002",
		},
	},
	{
		pattern: "agent not found",
		msg: UserMessage{
			Message: "Agent not found",
			Action:  "Refresh the agent list and try again",
			Code:    "AGT001",
		},
	},
	{
		pattern: "agent with this email already exists",
		msg: UserMessage{
			Message: "Agent with this email already exists",
			Action:  "Use a different email address",
			Code:    "AGT002",
		},
	},
	{
		pattern: "distribution not found",
		msg: UserMessage{
			Message: "Distribution not found",
			Action:  "Check the distribution ID",
			Code:    "DST002",
		},
	},
	{
		pattern: "roster changed",
		msg: UserMessage{
			Message: "Agent roster changed while the file was being distributed",
			Action:  "Upload the file again",
			Code:    "DST003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapPipelineError(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func mapPipelineError(err error) (UserMessage, bool) {
	var (
		formatErr  *FormatError
		headersErr *MissingHeadersError
		emptyErr   *EmptyInputError
		noneErr    *NoAcceptedRecordsError
		targetErr  *TargetCountError
	)

	switch {
	case errors.As(err, &formatErr):
		return UserMessage{
			Message: formatErr.Error(),
			Action:  "Upload a comma-separated .csv or an .xlsx workbook",
			Code:    "FILE002",
		}, true
	case errors.As(err, &headersErr):
		return UserMessage{
			Message: fmt.Sprintf("Invalid headers. Required: %s. Missing: %s",
				strings.Join(RequiredHeaders, ", "), strings.Join(headersErr.Missing, ", ")),
			Action: "Add the missing columns to the first row of the file",
			Code:   "VAL004",
		}, true
	case errors.As(err, &emptyErr):
		return UserMessage{
			Message: "File is empty or has no data rows",
			Action:  "Upload a file with at least one contact row",
			Code:    "FILE005",
		}, true
	case errors.As(err, &noneErr):
		return UserMessage{
			Message: "No valid records found",
			Action:  "Every row needs a FirstName and a Phone with at least 7 digits",
			Code:    "VAL007",
		}, true
	case errors.As(err, &targetErr):
		return UserMessage{
			Message: fmt.Sprintf("Exactly %d active agents are required for distribution (found %d)",
				RequiredTargets, targetErr.Found),
			Action: "Create more agents or activate existing ones",
			Code:   "DST001",
		}, true
	}
	return UserMessage{}, false
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
