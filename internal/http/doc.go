// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /sessions: starts a session for a chosen account. Body:
//     {"user_id"}. Response: {"token","user"} with the token also surfaced
//     via the `X-Session-Token` header and a `session_token` cookie.
//   - DELETE /sessions/current: discards the session token extracted from the
//     Authorization header or session cookie. Returns 204 No Content and
//     clears the cookie.
//   - GET /users: the account list shown on the login screen; available
//     without a session. POST /users and DELETE /users/{id} are
//     administrator controlled and exchange the `userDTO` payload defined in
//     user_handler.go.
//   - GET /classrooms, POST /classrooms, PUT /classrooms/{id},
//     DELETE /classrooms/{id}: classroom catalog endpoints exchanging the
//     `classroomDTO` payload defined in classroom_handler.go. Listing is
//     available to any authenticated principal while mutations require admin
//     privileges.
//   - GET /availability: reports whether a classroom slot is free. Query:
//     classroom_id, date (yyyy-mm-dd), hour.
//   - GET /blocked-slots: lists timetable blocks, optionally scoped by
//     classroom_id.
//   - GET /bookings, POST /bookings, DELETE /bookings/{id}: one-off booking
//     endpoints exchanging the `bookingDTO` payload defined in
//     booking_handler.go.
//   - GET /series, POST /series, DELETE /series/{id}: recurring booking
//     endpoints exchanging the `seriesDTO` payload. A conflicting series is
//     rejected with 409 and the colliding dates.
//   - GET /settings: the school settings including the derived teacher
//     roster. POST /import applies an administrator configuration file.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
