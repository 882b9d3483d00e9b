package core

import "strings"

// ValidationResult splits parsed rows into accepted records and rejections.
// Both slices keep input row order.
type ValidationResult struct {
	Accepted []ContactRecord
	Rejected []RowRejection
}

// ValidateRows applies the row rules to every row. It has no side effects.
//
// Rules, first failure wins:
//  1. FirstName and Notes are trimmed; Phone keeps only its digits.
//  2. An empty FirstName or Phone rejects with ReasonMissingRequired.
//  3. A Phone shorter than MinPhoneDigits rejects with ReasonPhoneTooShort.
func ValidateRows(rows []RawRow) ValidationResult {
	var result ValidationResult

	for i, row := range rows {
		record, reason, ok := validateRow(row)
		if !ok {
			result.Rejected = append(result.Rejected, RowRejection{
				Row:       i + 2, // header is row 1
				Reason:    reason,
				Error:     reason.Message(),
				RawFields: row,
			})
			continue
		}
		result.Accepted = append(result.Accepted, record)
	}

	return result
}

func validateRow(row RawRow) (ContactRecord, ReasonCode, bool) {
	firstName := strings.TrimSpace(row["FirstName"])
	phone := digitsOnly(row["Phone"])
	notes := strings.TrimSpace(row["Notes"])

	if firstName == "" || phone == "" {
		return ContactRecord{}, ReasonMissingRequired, false
	}
	if len(phone) < MinPhoneDigits {
		return ContactRecord{}, ReasonPhoneTooShort, false
	}

	return ContactRecord{FirstName: firstName, Phone: phone, Notes: notes}, "", true
}

// digitsOnly strips every character that is not an ASCII digit.
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
