package domain

import goerrors "github.com/goliatone/go-errors"

// Text codes attached to categorized errors.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeFetchFailed  = "CMS_FETCH_FAILED"
	CodeUpdateFailed = "CMS_UPDATE_FAILED"
	CodeInvalidPatch = "INVALID_PATCH"
)

// NewNotFound reports an absent object.
func NewNotFound(what string) error {
	return goerrors.New(what+" not found", goerrors.CategoryNotFound).WithTextCode(CodeNotFound)
}

func IsNotFound(err error) bool {
	return goerrors.HasCategory(err, goerrors.CategoryNotFound)
}
