package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme prefixes tokens both in the Authorization header and in the
// login response body.
const BearerScheme = "Bearer"
