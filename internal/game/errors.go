package game

import (
	"fmt"
	"time"
)

// Error codes carried on gameplay rejections. Handlers map these onto HTTP
// statuses; clients branch on them.
const (
	CodePlayerNotFound    = "player_not_found"
	CodeNameTaken         = "name_taken"
	CodeInvalidName       = "invalid_name"
	CodeTileNotFound      = "tile_not_found"
	CodeTileLocked        = "tile_locked"
	CodeTileLimitReached  = "tile_limit_reached"
	CodeOnCooldown        = "on_cooldown"
	CodeLandLocked        = "land_locked"
	CodeLevelTooLow       = "level_too_low"
	CodeLocked            = "locked"
	CodeNotEnoughRes      = "not_enough_resources"
	CodeNotEnoughCoins    = "not_enough_coins"
	CodeNotEnoughDiams    = "not_enough_diams"
	CodeMaxOwnedReached   = "max_owned_reached"
	CodePurchaseLimit     = "purchase_limit_reached"
	CodeCardNotFound      = "card_not_found"
	CodeCardDisabled      = "card_disabled"
	CodeResourceNotFound  = "resource_not_found"
	CodeRecipeNotFound    = "recipe_not_found"
	CodeCraftTableTooLow  = "craft_table_too_low"
	CodeCraftSlotsBusy    = "craft_slots_busy"
	CodeJobNotFound       = "job_not_found"
	CodeJobNotReady       = "job_not_ready"
	CodeJobClaimed        = "job_already_claimed"
	CodeAlreadyClaimed    = "already_claimed"
	CodeInvalidQuantity   = "invalid_quantity"
	CodeInvalidPriceIndex = "invalid_price_index"
	CodeLandNotFound      = "land_not_found"
)

// Error is a gameplay rejection. The optional fields give the client enough
// to render the failure without a second round trip.
type Error struct {
	Code           string             `json:"code"`
	Message        string             `json:"message"`
	Until          *time.Time         `json:"until,omitempty"`
	NextEligibleAt *time.Time         `json:"next_eligible_at,omitempty"`
	Missing        map[string]float64 `json:"missing,omitempty"`
	Required       float64            `json:"required,omitempty"`
	Current        float64            `json:"current,omitempty"`
	Key            string             `json:"key,omitempty"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

func newErr(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsGameError unwraps err into *Error when it is one.
func AsGameError(err error) (*Error, bool) {
	ge, ok := err.(*Error)
	return ge, ok
}
