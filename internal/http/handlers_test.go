package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/barbershop-booking/internal/application"
	"github.com/example/barbershop-booking/internal/export"
	"github.com/example/barbershop-booking/internal/persistence/memory"
	"github.com/example/barbershop-booking/internal/testfixtures"
)

const (
	testAdminUser     = "owner"
	testAdminPassword = "s3cret"
)

var testFlashSecret = []byte("0123456789abcdef0123456789abcdef")

type testServer struct {
	handler http.Handler
	store   *memory.Storage
	flashes *FlashStore
}

type serverOption func(*RouterConfig)

func withSubmitRateLimit(n int) serverOption {
	return func(cfg *RouterConfig) { cfg.SubmitRateLimit = n }
}

func withAdminRateLimit(n int) serverOption {
	return func(cfg *RouterConfig) { cfg.AdminRateLimit = n }
}

func withTrustProxy() serverOption {
	return func(cfg *RouterConfig) { cfg.TrustProxy = true }
}

func withPinger(p Pinger) serverOption {
	return func(cfg *RouterConfig) { cfg.Health = NewHealthHandler(p, nil) }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	factory := testfixtures.NewServiceFactory()
	store := testfixtures.NewMemoryStore(t)
	bookings := factory.NewBookingService(testfixtures.BookingServiceDeps{Schedules: store, Bookings: store})
	admin := factory.NewScheduleAdminService(testfixtures.ScheduleAdminServiceDeps{Schedules: store, Bookings: store})

	renderer, err := NewRenderer()
	require.NoError(t, err)

	hash, err := application.HashPassword(testAdminPassword, application.Argon2idParams{
		Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	require.NoError(t, err)
	auth, err := application.NewAdminAuthenticator(testAdminUser, hash)
	require.NoError(t, err)

	flashes := NewFlashStore(testFlashSecret, false)
	cfg := RouterConfig{
		Pages:     NewPageHandler(bookings, renderer, flashes, nil),
		API:       NewAPIHandler(bookings, nil),
		Admin:     NewAdminHandler(admin, nil, nil),
		AdminAuth: auth,
		Health:    NewHealthHandler(store, nil),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testServer{handler: NewRouter(cfg), store: store, flashes: flashes}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// follow replays the flash cookie of a redirect onto GET / and returns the page.
func (s *testServer) follow(t *testing.T, redirect *httptest.ResponseRecorder) string {
	t.Helper()

	require.Equal(t, http.StatusFound, redirect.Code)
	require.Equal(t, "/", redirect.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range redirect.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := s.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func bookPath(date, dayName string) string {
	return "/book/" + date + "/" + url.PathEscape(dayName)
}

func submitRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func validForm() url.Values {
	return url.Values{
		"name":      {"Ali Rezaei"},
		"phone":     {"09121234567"},
		"date":      {"1403/07/25"},
		"time_slot": {"09:00 - 09:30"},
	}
}

func TestIndexRendersCurrentWeek(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec := srv.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	body := rec.Body.String()
	assert.Contains(t, body, "شنبه 1403/07/21")
	assert.Contains(t, body, "جمعه 1403/07/27")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestBookPage(t *testing.T) {
	t.Parallel()

	t.Run("open day lists slots", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(httptest.NewRequest(http.MethodGet, bookPath("1403/07/25", "چهارشنبه"), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "09:00 - 09:30")
		assert.Contains(t, body, "16:30 - 17:00")
		assert.Contains(t, body, `value="1403/07/25"`)
	})

	t.Run("dashed dates are accepted", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(httptest.NewRequest(http.MethodGet, bookPath("1403-07-25", "چهارشنبه"), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="1403/07/25"`)
	})

	t.Run("closed day redirects with flash", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		require.NoError(t, srv.store.UpdateDaySchedule(context.Background(), testfixtures.ClosedDay("جمعه")))

		rec := srv.do(httptest.NewRequest(http.MethodGet, bookPath("1403/07/27", "جمعه"), nil))
		assert.Contains(t, srv.follow(t, rec), "روز جمعه تعطیل است!")
	})

	t.Run("unknown day is treated as closed", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(httptest.NewRequest(http.MethodGet, bookPath("1403/07/25", "Monday"), nil))
		assert.Contains(t, srv.follow(t, rec), "روز Monday تعطیل است!")
	})

	t.Run("fully booked day redirects with flash", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		require.NoError(t, srv.store.UpdateDaySchedule(context.Background(), testfixtures.DaySchedule("چهارشنبه", "09:00", "09:30")))
		srv.follow(t, srv.do(submitRequest(validForm())))

		rec := srv.do(httptest.NewRequest(http.MethodGet, bookPath("1403/07/25", "چهارشنبه"), nil))
		assert.Contains(t, srv.follow(t, rec), "در چهارشنبه (1403/07/25) همه زمان‌ها پر هستند!")
	})

	t.Run("path without day name is not found", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(httptest.NewRequest(http.MethodGet, "/book/1403", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	t.Run("success flashes booking number", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		page := srv.follow(t, srv.do(submitRequest(validForm())))
		assert.Contains(t, page, "رزرو با موفقیت ثبت شد! شماره رزرو: #1")
		assert.Contains(t, page, `class="flash success"`)

		rec := srv.do(httptest.NewRequest(http.MethodGet, bookPath("1403/07/25", "چهارشنبه"), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), ">09:00 - 09:30<")
	})

	tests := []struct {
		name   string
		mutate func(url.Values)
		want   string
	}{
		{name: "single word name", mutate: func(v url.Values) { v.Set("name", "Ali") }, want: "نام و نام خانوادگی کامل وارد کنید!"},
		{name: "short phone", mutate: func(v url.Values) { v.Set("phone", "12345") }, want: "شماره تلفن معتبر وارد کنید!"},
		{name: "malformed slot", mutate: func(v url.Values) { v.Set("time_slot", "nine") }, want: "زمان انتخاب‌شده معتبر نیست!"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := newTestServer(t)

			form := validForm()
			tc.mutate(form)
			page := srv.follow(t, srv.do(submitRequest(form)))
			assert.Contains(t, page, tc.want)
			assert.Contains(t, page, `class="flash message"`)
		})
	}

	t.Run("second booking of the same slot is rejected", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		srv.follow(t, srv.do(submitRequest(validForm())))
		page := srv.follow(t, srv.do(submitRequest(validForm())))
		assert.Contains(t, page, "این زمان دیگر در دسترس نیست!")
	})
}

func TestFlashIsShownOnce(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	redirect := srv.do(submitRequest(validForm()))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range redirect.Result().Cookies() {
		req.AddCookie(c)
	}
	first := srv.do(req)
	require.Contains(t, first.Body.String(), "شماره رزرو: #1")

	cleared := first.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, flashCookieName, cleared[0].Name)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestFlashStoreRejectsTamperedCookie(t *testing.T) {
	t.Parallel()

	store := NewFlashStore(testFlashSecret, false)
	rec := httptest.NewRecorder()
	store.Add(rec, httptest.NewRequest(http.MethodGet, "/", nil), Flash{Message: "سلام"})
	cookie := rec.Result().Cookies()[0]

	valid := httptest.NewRequest(http.MethodGet, "/", nil)
	valid.AddCookie(cookie)
	assert.Equal(t, []Flash{{Category: FlashCategoryMessage, Message: "سلام"}}, store.Pop(httptest.NewRecorder(), valid))

	other := NewFlashStore([]byte("another-secret"), false)
	assert.Empty(t, other.Pop(httptest.NewRecorder(), valid))

	tampered := httptest.NewRequest(http.MethodGet, "/", nil)
	tampered.AddCookie(&http.Cookie{Name: flashCookieName, Value: "e30." + strings.SplitN(cookie.Value, ".", 2)[1]})
	assert.Empty(t, store.Pop(httptest.NewRecorder(), tampered))
}

func TestAPI(t *testing.T) {
	t.Parallel()

	postBooking := func(srv *testServer, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return srv.do(req)
	}
	const validBody = `{"name":"Ali Rezaei","phone":"09121234567","date":"1403/07/25","time_slot":"09:00 - 09:30"}`

	t.Run("week", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/week", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp weekResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Days, 7)
		assert.Equal(t, weekDayDTO{Name: "شنبه", Date: "1403/07/21"}, resp.Days[0])
	})

	t.Run("slots", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/slots?date=1403/07/25&day="+url.QueryEscape("چهارشنبه"), nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp slotsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Slots, 16)
		assert.Equal(t, "09:00 - 09:30", resp.Slots[0])
	})

	t.Run("slots without day is a bad request", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/slots?date=1403/07/25", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("closed day is not found", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		require.NoError(t, srv.store.UpdateDaySchedule(context.Background(), testfixtures.ClosedDay("جمعه")))

		rec := srv.do(httptest.NewRequest(http.MethodGet, "/api/slots?date=1403/07/27&day="+url.QueryEscape("جمعه"), nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "DAY_CLOSED", resp.ErrorCode)
	})

	t.Run("create then conflict", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := postBooking(srv, validBody)
		require.Equal(t, http.StatusCreated, rec.Code)
		var created bookingResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, int64(1), created.Booking.ID)
		assert.Equal(t, "1403/07/25", created.Booking.Date)
		assert.Equal(t, "09:00 - 09:30", created.Booking.TimeSlot)

		rec = postBooking(srv, validBody)
		require.Equal(t, http.StatusConflict, rec.Code)
		var conflict errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
		assert.Equal(t, "SLOT_TAKEN", conflict.ErrorCode)
	})

	t.Run("validation errors are unprocessable", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := postBooking(srv, `{"name":"Ali","phone":"09121234567","date":"1403/07/25","time_slot":"09:00 - 09:30"}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_NAME", resp.ErrorCode)
		assert.Equal(t, application.MessageInvalidName, resp.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := postBooking(srv, `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminRoutes(t *testing.T) {
	t.Parallel()

	adminRequest := func(method, target, body string) *http.Request {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
		}
		req.SetBasicAuth(testAdminUser, testAdminPassword)
		return req
	}

	t.Run("require credentials", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(httptest.NewRequest(http.MethodGet, "/admin/schedules", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

		req := httptest.NewRequest(http.MethodGet, "/admin/schedules", nil)
		req.SetBasicAuth(testAdminUser, "wrong")
		rec = srv.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("list schedules", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(adminRequest(http.MethodGet, "/admin/schedules", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp scheduleListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Schedules, 7)
		assert.Equal(t, scheduleDTO{DayName: "شنبه", IsOpen: true, StartTime: "09:00", EndTime: "17:00"}, resp.Schedules[0])
	})

	t.Run("update schedule closes the day for customers", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(adminRequest(http.MethodPut, "/admin/schedules/"+url.PathEscape("جمعه"), `{"is_open":false,"start_time":"10:00","end_time":"14:00"}`))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp scheduleResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, scheduleDTO{DayName: "جمعه", IsOpen: false, StartTime: "10:00", EndTime: "14:00"}, resp.Schedule)

		rec = srv.do(httptest.NewRequest(http.MethodGet, bookPath("1403/07/27", "جمعه"), nil))
		assert.Contains(t, srv.follow(t, rec), "روز جمعه تعطیل است!")
	})

	t.Run("update schedule validates hours", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(adminRequest(http.MethodPut, "/admin/schedules/"+url.PathEscape("جمعه"), `{"is_open":true,"start_time":"18:00","end_time":"14:00"}`))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_SCHEDULE", resp.ErrorCode)
		assert.Contains(t, resp.Errors, "end_time")
	})

	t.Run("update unknown day", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)

		rec := srv.do(adminRequest(http.MethodPut, "/admin/schedules/Monday", `{"is_open":true,"start_time":"09:00","end_time":"14:00"}`))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list and export bookings", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		srv.follow(t, srv.do(submitRequest(validForm())))

		rec := srv.do(adminRequest(http.MethodGet, "/admin/bookings?date=1403/07/25", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp bookingListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Bookings, 1)
		assert.Equal(t, "Ali Rezaei", resp.Bookings[0].CustomerName)

		rec = srv.do(adminRequest(http.MethodGet, "/admin/bookings?date=not-a-date", ""))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		rec = srv.do(adminRequest(http.MethodGet, "/admin/bookings/export.xlsx", ""))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, export.ContentType, rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"), "xlsx is a zip archive")
	})

	t.Run("not mounted without authenticator", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, func(cfg *RouterConfig) { cfg.AdminAuth = nil })

		rec := srv.do(adminRequest(http.MethodGet, "/admin/schedules", ""))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSubmitRateLimit(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, withSubmitRateLimit(1))

	first := srv.do(submitRequest(validForm()))
	assert.Equal(t, http.StatusFound, first.Code)

	second := srv.do(submitRequest(validForm()))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	third := srv.do(httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusTooManyRequests, third.Code, "page and API share one limiter")
}

func TestSubmitRateLimitIgnoresForwardedHeaders(t *testing.T) {
	t.Parallel()

	forwardedSubmit := func(ip string) *http.Request {
		req := submitRequest(validForm())
		req.Header.Set("X-Forwarded-For", ip)
		req.Header.Set("X-Real-IP", ip)
		return req
	}

	t.Run("direct clients", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, withSubmitRateLimit(1))

		assert.Equal(t, http.StatusFound, srv.do(forwardedSubmit("203.0.113.1")).Code)
		assert.Equal(t, http.StatusTooManyRequests, srv.do(forwardedSubmit("203.0.113.2")).Code)
	})

	t.Run("behind a trusted proxy", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, withSubmitRateLimit(1), withTrustProxy())

		assert.Equal(t, http.StatusFound, srv.do(forwardedSubmit("203.0.113.1")).Code)
		assert.Equal(t, http.StatusFound, srv.do(forwardedSubmit("203.0.113.2")).Code)
		assert.Equal(t, http.StatusTooManyRequests, srv.do(forwardedSubmit("203.0.113.1")).Code)
	})
}

func TestAdminRateLimit(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, withAdminRateLimit(2))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/admin/schedules", nil)
		req.SetBasicAuth(testAdminUser, "guess")
		assert.Equal(t, http.StatusUnauthorized, srv.do(req).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/schedules", nil)
	req.SetBasicAuth(testAdminUser, testAdminPassword)
	rec := srv.do(req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMITED", body.ErrorCode)

	assert.Equal(t, http.StatusOK, srv.do(httptest.NewRequest(http.MethodGet, "/", nil)).Code, "public pages use their own limiter")
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("database is down") }

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	assert.Equal(t, http.StatusOK, srv.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	assert.Equal(t, http.StatusOK, srv.do(httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)

	down := newTestServer(t, withPinger(failingPinger{}))
	assert.Equal(t, http.StatusOK, down.do(httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	assert.Equal(t, http.StatusServiceUnavailable, down.do(httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)
}
