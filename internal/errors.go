package internal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NYCU-SDC/summer/pkg/problem"
)

// ErrIncompleteAnswers carries the required questions a respondent has not
// answered. Callers surface the list and must not advance or submit.
type ErrIncompleteAnswers struct {
	MissingQuestions []struct {
		ID   string
		Text string
	}
}

func (e ErrIncompleteAnswers) Error() string {
	missing := make([]string, len(e.MissingQuestions))
	for i, q := range e.MissingQuestions {
		missing[i] = fmt.Sprintf("ID: %s, Text: %s", q.ID, q.Text)
	}

	return "response is not complete, missing required answers: " + strings.Join(missing, "; ")
}

// Is lets errors.Is match any ErrIncompleteAnswers regardless of which
// questions it carries.
func (e ErrIncompleteAnswers) Is(target error) bool {
	_, ok := target.(ErrIncompleteAnswers)
	return ok
}

var (
	// Auth Errors
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrProviderNotFound    = errors.New("provider not found")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrOAuthError          = errors.New("failed to finish OAuth flow, OAuth error received")
	ErrInvalidCallbackInfo = errors.New("invalid callback info")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrUnauthorizedError   = errors.New("unauthorized error")
	ErrInternalServerError = errors.New("internal server error")
	ErrForbiddenError      = errors.New("forbidden error")
	ErrNotFound            = errors.New("not found")

	// JWT Authentication Errors
	ErrMissingAuthHeader       = errors.New("missing access token")
	ErrInvalidAuthHeaderFormat = errors.New("invalid access token")
	ErrInvalidJWTToken         = errors.New("invalid JWT token")
	ErrInvalidAuthUser         = errors.New("invalid authenticated user")

	// User Errors
	ErrUserNotFound       = errors.New("user not found")
	ErrNoUserInContext    = errors.New("no user found in request context")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrDatabaseError      = errors.New("database error")

	// Survey Errors
	ErrSurveyNotFound      = errors.New("survey not found")
	ErrSurveyNotDraft      = errors.New("survey is not in draft status")
	ErrSurveyNotPublished  = errors.New("survey is not published")
	ErrSurveyTitleRequired = errors.New("survey title is required before publishing")
	ErrDuplicateQuestionID = errors.New("duplicate question id in survey definition")
	ErrInvalidThemeColor   = errors.New("theme color is not a valid hex color")

	// Question and Validation Errors
	ErrQuestionNotFound = errors.New("question not found")
	ErrValidationFailed = errors.New("validation failed")

	// Response Errors
	ErrResponseNotFound = errors.New("response not found")
	ErrSurveyClosed     = errors.New("survey is not accepting responses")

	// Qualification Errors
	ErrInvalidTest            = errors.New("qualification test is invalid")
	ErrQualificationNotFound  = errors.New("qualification test not found")
	ErrQualificationRequired  = errors.New("a passing qualification attempt is required")
	ErrIncompleteTestAnswers  = errors.New("qualification test answers are incomplete")
	ErrQualificationNotPassed = errors.New("qualification test was not passed")

	// Generator Errors
	ErrGeneratorUnavailable = errors.New("question generator is unavailable")
	ErrGeneratorBadOutput   = errors.New("question generator returned unusable output")

	// Invite Errors
	ErrInvalidInviteEmail = errors.New("invite email address is invalid")
	ErrSMTPNotConfigured  = errors.New("smtp is not configured")

	// Image Errors
	ErrImageNotFound      = errors.New("image not found")
	ErrImageTooLarge      = errors.New("image exceeds the size limit")
	ErrInvalidImageFormat = errors.New("unsupported image format")
)

func NewProblemWriter() *problem.HttpWriter {
	return problem.NewWithMapping(ErrorHandler)
}

func ErrorHandler(err error) problem.Problem {
	switch {
	// Auth Errors
	case errors.Is(err, ErrInvalidRefreshToken):
		return problem.NewNotFoundProblem("refresh token not found")
	case errors.Is(err, ErrProviderNotFound):
		return problem.NewNotFoundProblem("provider not found")
	case errors.Is(err, ErrInvalidCredentials):
		return problem.NewUnauthorizedProblem("invalid email or password")
	case errors.Is(err, ErrInvalidCallbackInfo):
		return problem.NewValidateProblem("invalid callback info")
	case errors.Is(err, ErrPermissionDenied):
		return problem.NewForbiddenProblem("permission denied")
	case errors.Is(err, ErrUnauthorizedError):
		return problem.NewUnauthorizedProblem("unauthorized error")
	case errors.Is(err, ErrInternalServerError):
		return problem.NewInternalServerProblem("internal server error")
	case errors.Is(err, ErrForbiddenError):
		return problem.NewForbiddenProblem("forbidden error")
	case errors.Is(err, ErrNotFound):
		return problem.NewNotFoundProblem("not found")

	// JWT Authentication Errors
	case errors.Is(err, ErrMissingAuthHeader):
		return problem.NewUnauthorizedProblem("missing access token")
	case errors.Is(err, ErrInvalidAuthHeaderFormat):
		return problem.NewUnauthorizedProblem("invalid access token")
	case errors.Is(err, ErrInvalidJWTToken):
		return problem.NewUnauthorizedProblem("invalid JWT token")
	case errors.Is(err, ErrInvalidAuthUser):
		return problem.NewUnauthorizedProblem("invalid authenticated user")

	// User Errors
	case errors.Is(err, ErrUserNotFound):
		return problem.NewNotFoundProblem("user not found")
	case errors.Is(err, ErrNoUserInContext):
		return problem.NewUnauthorizedProblem("no user found in request context")
	case errors.Is(err, ErrEmailAlreadyExists):
		return problem.NewValidateProblem("email already exists")
	case errors.Is(err, ErrDatabaseError):
		return problem.NewBadRequestProblem("database error")

	// Survey Errors
	case errors.Is(err, ErrSurveyNotFound):
		return problem.NewNotFoundProblem("survey not found")
	case errors.Is(err, ErrSurveyNotDraft):
		return problem.NewValidateProblem("survey is not in draft status")
	case errors.Is(err, ErrSurveyNotPublished):
		return problem.NewValidateProblem("survey is not published")
	case errors.Is(err, ErrSurveyTitleRequired):
		return problem.NewValidateProblem("survey title is required before publishing")
	case errors.Is(err, ErrDuplicateQuestionID):
		return problem.NewValidateProblem("duplicate question id in survey definition")
	case errors.Is(err, ErrInvalidThemeColor):
		return problem.NewValidateProblem("theme color is not a valid hex color")

	// Question and Validation Errors
	case errors.Is(err, ErrQuestionNotFound):
		return problem.NewNotFoundProblem("question not found")
	case errors.Is(err, ErrValidationFailed):
		return problem.NewValidateProblem("validation failed")

	// Response Errors
	case errors.Is(err, ErrResponseNotFound):
		return problem.NewNotFoundProblem("response not found")
	case errors.Is(err, ErrSurveyClosed):
		return problem.NewValidateProblem("survey is not accepting responses")
	case errors.Is(err, ErrIncompleteAnswers{}):
		return problem.NewValidateProblem(err.Error())

	// Qualification Errors
	case errors.Is(err, ErrInvalidTest):
		return problem.NewValidateProblem("qualification test is invalid")
	case errors.Is(err, ErrQualificationNotFound):
		return problem.NewNotFoundProblem("qualification test not found")
	case errors.Is(err, ErrQualificationRequired):
		return problem.NewForbiddenProblem("a passing qualification attempt is required")
	case errors.Is(err, ErrIncompleteTestAnswers):
		return problem.NewValidateProblem("qualification test answers are incomplete")
	case errors.Is(err, ErrQualificationNotPassed):
		return problem.NewForbiddenProblem("qualification test was not passed")

	// Generator Errors
	case errors.Is(err, ErrGeneratorUnavailable):
		return problem.NewInternalServerProblem("question generator is unavailable")
	case errors.Is(err, ErrGeneratorBadOutput):
		return problem.NewInternalServerProblem("question generator returned unusable output")

	// Invite Errors
	case errors.Is(err, ErrInvalidInviteEmail):
		return problem.NewValidateProblem("invite email address is invalid")
	case errors.Is(err, ErrSMTPNotConfigured):
		return problem.NewInternalServerProblem("smtp is not configured")

	// Image Errors
	case errors.Is(err, ErrImageNotFound):
		return problem.NewNotFoundProblem("image not found")
	case errors.Is(err, ErrImageTooLarge):
		return problem.NewValidateProblem("image exceeds the size limit")
	case errors.Is(err, ErrInvalidImageFormat):
		return problem.NewValidateProblem("unsupported image format")
	}
	return problem.Problem{}
}
