package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/wordplay/internal/game"
)

var errBadJSON = errors.New("invalid_json")

var (
	validate     = validator.New()
	usernameChar = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

func init() {
	_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameChar.MatchString(fl.Field().String())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// statusFor maps a game error kind onto an HTTP status.
func statusFor(k game.Kind) int {
	switch k {
	case game.KindUnauthenticated:
		return http.StatusUnauthorized
	case game.KindNotFound:
		return http.StatusNotFound
	case game.KindInvalidState, game.KindExhaustedAttempts, game.KindHintExhausted, game.KindNoHintablePositions:
		return http.StatusConflict
	case game.KindMalformedInput, game.KindRejectedByDictionary:
		return http.StatusUnprocessableEntity
	case game.KindOracleUnavailable:
		return http.StatusServiceUnavailable
	case game.KindNoWordsAvailable:
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// writeError renders err. Typed game errors carry their kind; anything else
// is logged and reported as an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	k := game.KindOf(err)
	switch k {
	case "":
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
	case game.KindNoWordsAvailable:
		writeJSON(w, http.StatusOK, map[string]any{"session": nil, "reason": string(k)})
	default:
		writeJSON(w, statusFor(k), errorBody{Error: string(k), Message: err.Error()})
	}
}

// normalizer is implemented by payloads that clean up fields before validation.
type normalizer interface{ normalize() }

// decodeBody reads a JSON body into dst and runs struct validation.
// An empty body is treated as an empty object.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errBadJSON
	}
	if n, ok := dst.(normalizer); ok {
		n.normalize()
	}
	return validate.Struct(dst)
}

// validationMessage summarizes validator errors in one line.
func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			msgs = append(msgs, field+" must be at least "+fe.Param()+" characters")
		case "max":
			msgs = append(msgs, field+" must be at most "+fe.Param()+" characters")
		case "username":
			msgs = append(msgs, field+": letters, numbers, underscore only")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
