package event

const UserOtpDispatchDestination string = "user_otp_dispatch"
const UserOtpDispatchConsumerNotification string = "user_otp_dispatch_notification"

type UserOtpDispatchMessage struct {
	UserID           int64  `json:"user_id"`
	Email            string `json:"email"`
	FullName         string `json:"full_name"`
	Code             string `json:"code"`
	ExpiresInMinutes int64  `json:"expires_in_minutes"`
}
