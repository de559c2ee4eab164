// Package http provides the HTML pages, JSON API, admin endpoints and
// middleware of the booking service.
//
// The router exposes the following endpoints:
//   - GET /: the current Persian week with links to each day.
//   - GET /book/{date}/{day}: free slots of one day. The date may contain
//     slashes. Closed or fully booked days redirect to / with a flash.
//   - POST /submit: form fields name, phone, date and time_slot. Always
//     redirects to / with a flash describing the outcome.
//   - GET /api/week, GET /api/slots?date=&day=, POST /api/bookings: the same
//     flow as JSON. Errors use the errorResponse payload in responder.go.
//   - GET /admin/schedules, PUT /admin/schedules/{day}, GET /admin/bookings,
//     GET /admin/bookings/export.xlsx: owner endpoints behind HTTP Basic auth,
//     mounted only when an admin password hash is configured.
//   - GET /healthz, GET /readyz, GET /metrics: operational probes.
//
// Flash notices travel in a one-shot cookie signed with HMAC-SHA256.
package http
