package http

import (
	"errors"
	"fmt"

	"github.com/example/barbershop-booking/internal/application"
)

const (
	msgSlotTaken      = "این زمان دیگر در دسترس نیست!"
	msgInternalError  = "خطای داخلی سرور رخ داد."
	msgBadRequest     = "درخواست نامعتبر است."
	msgUnauthorized   = "برای دسترسی باید وارد شوید."
	msgNotFound       = "مورد درخواستی پیدا نشد."
	msgInvalidInput   = "اطلاعات واردشده معتبر نیست."
	msgTooManyRequest = "تعداد درخواست‌ها بیش از حد مجاز است. کمی بعد دوباره تلاش کنید."
)

func dayClosedMessage(dayName string) string {
	return fmt.Sprintf("روز %s تعطیل است!", dayName)
}

func fullyBookedMessage(dayName, date string) string {
	return fmt.Sprintf("در %s (%s) همه زمان‌ها پر هستند!", dayName, date)
}

func bookingCreatedMessage(id int64) string {
	return fmt.Sprintf("رزرو با موفقیت ثبت شد! شماره رزرو: #%d", id)
}

// submitFailureMessage returns the customer facing text for an expected
// booking rejection. ok is false for errors that should surface as a 500.
func submitFailureMessage(err error) (msg string, ok bool) {
	switch {
	case errors.Is(err, application.ErrInvalidName):
		return application.MessageInvalidName, true
	case errors.Is(err, application.ErrInvalidPhone):
		return application.MessageInvalidPhone, true
	case errors.Is(err, application.ErrInvalidSlot):
		return application.MessageInvalidSlot, true
	case errors.Is(err, application.ErrSlotTaken):
		return msgSlotTaken, true
	default:
		return "", false
	}
}
