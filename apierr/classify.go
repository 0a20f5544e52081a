package apierr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Payload is the error body returned by the API
type Payload struct {
	Message     string
	Description string
	Error       string
}

// UnmarshalJSON accepts both the REST API ("message") and the OAuth API ("error_description") spellings.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message          *string `json:"message"`
		ErrorDescription *string `json:"error_description"`
		Description      *string `json:"description"`
		Error            *string `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Payload{}
	switch {
	case raw.Message != nil:
		p.Message = *raw.Message
	case raw.ErrorDescription != nil:
		p.Message = *raw.ErrorDescription
	}
	if raw.Description != nil {
		p.Description = *raw.Description
	}
	if raw.Error != nil {
		p.Error = *raw.Error
	}
	return nil
}

// group maps vendor error tokens to kinds for one status code; def covers missing or unknown tokens
type group struct {
	def    Kind
	tokens map[string]Kind
}

var statusTable = map[int]group{
	400: {def: KindBadRequest, tokens: map[string]Kind{
		"FieldValidationError":   KindFieldValidation,
		"authorization_pending":  KindAuthorizationPending,
		"invalid_client":         KindInvalidClient,
		"invalid_grant":          KindInvalidGrant,
		"bad_verification_code":  KindBadVerificationCode,
		"unsupported_token_type": KindUnsupportedTokenType,
	}},
	401: {def: KindUnauthorized},
	403: {def: KindForbidden, tokens: map[string]Kind{
		"DiskSymlinkPasswordRequiredError": KindPasswordRequired,
	}},
	404: {def: KindNotFound, tokens: map[string]Kind{
		"DiskNotFoundError":          KindPathNotFound,
		"DiskOperationNotFoundError": KindOperationNotFound,
	}},
	406: {def: KindNotAcceptable},
	409: {def: KindConflict, tokens: map[string]Kind{
		"DiskPathDoesntExistsError":              KindParentNotFound,
		"DiskPathPointsToExistentDirectoryError": KindDirectoryExists,
		"DiskResourceAlreadyExistsError":         KindPathExists,
		"MD5DifferError":                         KindMD5Differ,
	}},
	410: {def: KindGone},
	413: {def: KindPayloadTooLarge},
	415: {def: KindUnsupportedMedia},
	423: {def: KindLocked, tokens: map[string]Kind{
		"DiskResourceLockedError":        KindResourceIsLocked,
		"DiskUploadTrafficLimitExceeded": KindUploadTrafficLimitExceeded,
	}},
	429: {def: KindTooManyRequests, tokens: map[string]Kind{
		"DiskResourceDownloadLimitExceededError": KindResourceDownloadLimitExceeded,
	}},
	500: {def: KindInternal},
	502: {def: KindBadGateway},
	503: {def: KindUnavailable},
	504: {def: KindGatewayTimeout},
	507: {def: KindInsufficientStorage},
}

// Classify maps a failed response to an *Error. payload may be nil.
func Classify(status int, payload *Payload) *Error {
	g, ok := statusTable[status]
	if !ok {
		return &Error{
			Kind:       KindUnknown,
			Message:    fmt.Sprintf("Unknown Yandex.Disk error: status code %d", status),
			StatusCode: status,
		}
	}

	var p Payload
	if payload != nil {
		p = *payload
	}

	kind := g.def
	if k, found := g.tokens[p.Error]; found {
		kind = k
	}

	return &Error{
		Kind:        kind,
		Message:     composeMessage(p, status),
		Code:        p.Error,
		Description: p.Description,
		StatusCode:  status,
	}
}

// FromResponse classifies a failed response from its status and raw body.
// A body that is not a JSON object is treated as an empty payload.
func FromResponse(status int, body []byte) *Error {
	var payload *Payload
	var p Payload
	if len(body) > 0 && json.Unmarshal(body, &p) == nil {
		payload = &p
	}
	err := Classify(status, payload)
	err.Body = body
	return err
}

func composeMessage(p Payload, status int) string {
	parts := make([]string, 0, 4)
	if p.Message != "" {
		parts = append(parts, p.Message)
	}
	if p.Description != "" {
		parts = append(parts, "Error description: "+strings.TrimRight(p.Description, ".")+".")
	}
	if p.Error != "" {
		parts = append(parts, "Error code: "+p.Error)
	}
	parts = append(parts, "Status code: "+strconv.Itoa(status))
	return strings.Join(parts, " | ")
}

// KnownStatuses returns every status code with a dedicated classification
func KnownStatuses() []int {
	statuses := make([]int, 0, len(statusTable))
	for s := range statusTable {
		statuses = append(statuses, s)
	}
	return statuses
}

// TokensFor returns the vendor tokens recognised for a status code, mapped to their kinds
func TokensFor(status int) (Kind, map[string]Kind) {
	g := statusTable[status]
	out := make(map[string]Kind, len(g.tokens))
	for tok, k := range g.tokens {
		out[tok] = k
	}
	return g.def, out
}
