package brief

import (
	"fmt"
	"strings"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/modules/brief/taxonomy"
	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
)

const (
	maxReferenceBytes = 16 << 10
	maxNonceBytes     = 128
)

// Validate rejects malformed requests before any side effect.
func Validate(req types.GenerationRequest) error {
	if strings.TrimSpace(req.SubjectID) == "" {
		return apierr.Validation("subject_id_required", fmt.Errorf("subject_id is required"))
	}
	switch req.Mode {
	case types.ModeFull:
	case types.ModePartial:
		if req.PreviousResult == nil {
			return apierr.Validation("previous_result_required", fmt.Errorf("partial mode requires previous_result"))
		}
	default:
		return apierr.Validation("invalid_mode", fmt.Errorf("mode must be full or partial, got %q", req.Mode))
	}
	for _, f := range req.Tuning.HookFamilies {
		if taxonomy.CanonicalFamily(f) == "" {
			return apierr.Validation("unknown_hook_family", fmt.Errorf("unknown hook family %q", f))
		}
	}
	if len(req.Reference) > maxReferenceBytes {
		return apierr.Validation("reference_too_long", fmt.Errorf("reference exceeds %d bytes", maxReferenceBytes))
	}
	if len(req.Nonce) > maxNonceBytes {
		return apierr.Validation("nonce_too_long", fmt.Errorf("nonce exceeds %d bytes", maxNonceBytes))
	}
	return nil
}
