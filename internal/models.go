package internal

import (
	"fmt"
	"strings"
	"time"
)

// UserInfo is the locally persisted user record (the session minus its token)
type UserInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	IsAdmin bool   `json:"is_admin,omitempty"`
}

// Profile is the backend's view of the authenticated account
type Profile struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// Notification is a server-side notification record
type Notification struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	CreatedAt  string  `json:"created_at"`
	IsRead     bool    `json:"is_read"`
	DocumentID *string `json:"document_id,omitempty"`
}

// NotificationSettings mirrors the account's notification toggles
type NotificationSettings struct {
	PushEnabled      bool `json:"push_enabled" yaml:"push_enabled"`
	AnalysisComplete bool `json:"analysis_complete" yaml:"analysis_complete"`
	RiskAlert        bool `json:"risk_alert" yaml:"risk_alert"`
	MarketingPush    bool `json:"marketing_push" yaml:"marketing_push"`
	EmailEnabled     bool `json:"email_enabled" yaml:"email_enabled"`
	EmailReport      bool `json:"email_report" yaml:"email_report"`
}

// Set toggles a setting by its JSON name.
func (s *NotificationSettings) Set(key string, value bool) bool {
	switch key {
	case "push_enabled":
		s.PushEnabled = value
	case "analysis_complete":
		s.AnalysisComplete = value
	case "risk_alert":
		s.RiskAlert = value
	case "marketing_push":
		s.MarketingPush = value
	case "email_enabled":
		s.EmailEnabled = value
	case "email_report":
		s.EmailReport = value
	default:
		return false
	}
	return true
}

// ChatSession is a counseling conversation held by the backend
type ChatSession struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	CreatedAt  string  `json:"created_at"`
	DocumentID *string `json:"document_id,omitempty"`
}

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message
type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	Pending   bool   `json:"-"` // optimistic record not yet confirmed by the server
}

// GetCreatedAt parses CreatedAt, returning the zero time when it is missing or malformed
func (m Message) GetCreatedAt() time.Time {
	return parseTime(m.CreatedAt)
}

// ChatReply is the backend's answer to a sent message
type ChatReply struct {
	SessionID string  `json:"session_id"`
	Message   Message `json:"message"`
}

// RiskLevel classifies a clause
type RiskLevel string

const (
	RiskHigh    RiskLevel = "HIGH"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskLow     RiskLevel = "LOW"
	RiskUnknown RiskLevel = "UNKNOWN"
)

// ParseRiskLevel coerces s into the fixed enum; anything unrecognized is UNKNOWN.
func ParseRiskLevel(s string) RiskLevel {
	switch RiskLevel(s) {
	case RiskHigh, RiskMedium, RiskLow:
		return RiskLevel(s)
	default:
		return RiskUnknown
	}
}

// Label returns the badge text shown next to a clause
func (r RiskLevel) Label() string {
	switch r {
	case RiskHigh:
		return "높음"
	case RiskMedium:
		return "중간"
	case RiskLow:
		return "낮음"
	default:
		return "미분류"
	}
}

// AnalysisItem is one analysed contract clause
type AnalysisItem struct {
	ClauseNumber string    `json:"clause_number" yaml:"clause_number"`
	Title        string    `json:"title" yaml:"title"`
	RiskLevel    RiskLevel `json:"risk_level" yaml:"risk_level"`
	Summary      string    `json:"summary" yaml:"summary"`
	Suggestion   string    `json:"suggestion" yaml:"suggestion"`
}

// AnalysisResult is the detail payload for an analysed document
type AnalysisResult struct {
	Filename string         `json:"filename"`
	Analysis []AnalysisItem `json:"analysis"`
}

// AnalysisReport is a normalized result ready for display or export
type AnalysisReport struct {
	DocumentID string         `json:"document_id" yaml:"document_id"`
	Filename   string         `json:"filename" yaml:"filename"`
	Items      []AnalysisItem `json:"items" yaml:"items"`
}

// RiskCounts tallies items per risk level
func (r *AnalysisReport) RiskCounts() map[RiskLevel]int {
	counts := make(map[RiskLevel]int, 4)
	for _, item := range r.Items {
		counts[item.RiskLevel]++
	}
	return counts
}

// Document is an uploaded contract in the archive
type Document struct {
	ID        string `json:"id" yaml:"id"`
	Filename  string `json:"filename" yaml:"filename"`
	Status    string `json:"status" yaml:"status"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
	RiskCount int    `json:"risk_count" yaml:"risk_count"`
}

// DocumentStatus is the archive badge for a document
type DocumentStatus string

const (
	StatusSafe   DocumentStatus = "safe"
	StatusDanger DocumentStatus = "danger"
	StatusReview DocumentStatus = "review"
)

// ArchiveStatus maps the backend status and risk count to a badge
func (d Document) ArchiveStatus() DocumentStatus {
	if d.Status != "done" {
		return StatusReview
	}
	if d.RiskCount > 0 {
		return StatusDanger
	}
	return StatusSafe
}

// GetCreatedAt parses CreatedAt, returning the zero time when it is missing or malformed
func (d Document) GetCreatedAt() time.Time {
	return parseTime(d.CreatedAt)
}

// ContactRequest is an inquiry sent to the operators
type ContactRequest struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// InquiryStatus is the handling state of a contact inquiry
type InquiryStatus string

const (
	InquiryPending InquiryStatus = "pending"
	InquiryReplied InquiryStatus = "replied"
	InquiryClosed  InquiryStatus = "closed"
)

// ParseInquiryStatus validates a status name; the empty string is not a status
func ParseInquiryStatus(s string) (InquiryStatus, error) {
	switch st := InquiryStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case InquiryPending, InquiryReplied, InquiryClosed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown inquiry status %q (use pending, replied or closed)", s)
	}
}

// Label is the Korean badge text; unknown states read as pending
func (s InquiryStatus) Label() string {
	switch s {
	case InquiryReplied:
		return "답변완료"
	case InquiryClosed:
		return "종료"
	default:
		return "대기"
	}
}

// Inquiry is a contact inquiry as seen by an administrator
type Inquiry struct {
	ID            string        `json:"id"`
	UserName      string        `json:"user_name"`
	UserEmail     string        `json:"user_email"`
	Category      string        `json:"category"`
	CategoryLabel string        `json:"category_label"`
	Title         string        `json:"title"`
	Content       string        `json:"content"`
	Status        InquiryStatus `json:"status"`
	CreatedAt     string        `json:"created_at"`
}

// parseTime accepts RFC3339 and the backend's naive ISO timestamps
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
