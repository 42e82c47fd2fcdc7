package models

// RequestStatusPending is the only status the core ever assigns; approval
// happens outside this system.
const RequestStatusPending = "Pending"

// AccountRequest is an account application queued for manual review. The
// queue is append-only and never auto-approved.
type AccountRequest struct {
	RequestID    string `json:"request_id"`
	Status       string `json:"status"`
	RequestDate  string `json:"request_date"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	AccountType  string `json:"account_type"`
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	AadharNumber string `json:"aadhar_number"`
	PANNumber    string `json:"pan_number"`
}
