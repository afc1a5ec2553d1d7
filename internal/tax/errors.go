package tax

import "github.com/futureaiitofficial/prosumeai-sub005/internal/domain"

const opClassify = "tax.classify"

// Classification errors. Callers match them with errors.Is.
var (
	ErrEmptyID            = domain.Errorf(domain.EINVALID, opClassify, "Tax ID is empty")
	ErrUnsupportedCountry = domain.Errorf(domain.EINVALID, opClassify, "Tax IDs are not supported for this country")
	ErrInvalidFormat      = domain.Errorf(domain.EINVALID, opClassify, "Tax ID format is not valid for this country")
	ErrFormatCheck        = domain.Errorf(domain.EINTERNAL, opClassify, "Tax ID format check failed")
)
