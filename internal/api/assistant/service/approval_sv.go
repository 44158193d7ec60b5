package assistantService

import (
	"errors"
	"time"

	"AssistantGolang/internal/entity"
	"AssistantGolang/internal/tool"
	"AssistantGolang/pkg/log"
	redisPkg "AssistantGolang/pkg/redis"

	"golang.org/x/net/context"
)

// proposeSensitiveTool parks a tool invocation on the session and texts the
// user a verification code. The tool does not run until the code comes back.
func (s *assistantService) proposeSensitiveTool(c context.Context, state *entity.ConversationState, toolName string, args map[string]string) string {
	if _, ok := s.registry.Get(toolName); !ok {
		return "I can't do that right now."
	}

	code, err := s.utils.NewVerificationCode()
	if err != nil {
		s.log.WithFields(log.Fields{
			"user_id": state.UserID,
			"tool":    toolName,
			"error":   err.Error(),
		}).Error("Failed to generate verification code")
		return "I couldn't set up the approval. Try again in a moment."
	}

	if err := s.repo.Approval.StoreCode(c, state.UserID, code); err != nil {
		s.log.WithFields(log.Fields{
			"user_id": state.UserID,
			"tool":    toolName,
			"error":   err.Error(),
		}).Error("Failed to store verification code")
		return "I couldn't set up the approval. Try again in a moment."
	}

	state.PendingApproval = &entity.PendingToolApproval{
		ToolName:    toolName,
		Args:        args,
		RequestedAt: time.Now(),
	}
	state.Status = entity.ConversationWaiting

	s.deliverCode(c, state.UserID, code)

	return "That needs approval. I've sent a 6-digit code to your phone; reply with it within 5 minutes to continue, or say cancel."
}

// deliverCode texts the code to the user's registered number. Delivery
// failure is logged, not fatal: the code is still valid and visible in the
// provider retry path.
func (s *assistantService) deliverCode(c context.Context, userID, code string) {
	user, err := s.users.GetByID(c, userID)
	if err != nil {
		s.log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("Failed to resolve user for code delivery")
		return
	}

	_, err = s.messageSender.SendMessage(c, user.PhoneNumber,
		"Your assistant verification code is "+code+". It expires in 5 minutes.")
	if err != nil {
		s.log.WithFields(log.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Error("Failed to deliver verification code")
	}
}

// handleVerification checks a submitted code against the stored hash. A
// mismatch leaves the pending approval untouched so the user can retry; an
// expired or missing code drops the approval entirely.
func (s *assistantService) handleVerification(c context.Context, state *entity.ConversationState, code string) string {
	if state.PendingApproval == nil {
		return "There's nothing waiting for approval."
	}

	ok, err := s.repo.Approval.VerifyCode(c, state.UserID, code)
	if err != nil {
		if errors.Is(err, redisPkg.ErrNotFound) {
			state.PendingApproval = nil
			s.clearActiveFlow(state)
			return "That approval expired. Ask me again if you still want it."
		}
		s.log.WithFields(log.Fields{
			"user_id": state.UserID,
			"error":   err.Error(),
		}).Error("Verification code check failed")
		return "I couldn't check that code. Try again in a moment."
	}
	if !ok {
		return "That code doesn't match. Check the message I sent and try again."
	}

	if err := s.repo.Approval.ClearCode(c, state.UserID); err != nil {
		s.log.WithFields(log.Fields{
			"user_id": state.UserID,
			"error":   err.Error(),
		}).Warn("Failed to clear verification code after use")
	}

	pending := state.PendingApproval
	state.PendingApproval = nil
	s.clearActiveFlow(state)

	return s.registry.Dispatch(c, pending.ToolName,
		toolArgsFromApproval(pending), s.toolContext(state.UserID))
}

// toolArgsFromApproval rebuilds typed tool arguments from the flat map the
// session serialized. Unknown tools fall back to empty script args; Dispatch
// rejects them with user-facing text.
func toolArgsFromApproval(pending *entity.PendingToolApproval) tool.ToolArgs {
	switch pending.ToolName {
	case "run_script":
		return tool.ScriptArgs{Script: pending.Args["script"]}
	case "self_modify":
		return tool.SelfModifyArgs{Proposal: pending.Args["proposal"]}
	default:
		return tool.ScriptArgs{}
	}
}
