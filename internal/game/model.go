package game

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	StarterCash        = int64(25_000_000)
	StarterMarketShare = 5.0
	BankruptcyFloor    = int64(-10_000_000)
	LoanStep           = int64(5_000_000)
	LoanInterestRate   = 0.01
	BaseYear           = 2024

	MinMarketShare     = 0.1
	MaxMarketShare     = 100.0
	MinCompetitorShare = 0.1

	MaxCast = 6

	MinQuality = 10
	MaxQuality = 100
	MinHype    = 5
	MaxHype    = 100
	MinSkill   = 10
	MaxSkill   = 100
	MinFame    = 5
	MaxFame    = 100

	MinProductionBudget  = int64(1_000_000)
	MaxProductionBudget  = int64(50_000_000)
	MinMarketingBudget   = int64(500_000)
	MaxMarketingBudget   = int64(30_000_000)
	MaxMerchandiseBudget = int64(5_000_000)

	DefaultProductionBudget = int64(5_000_000)
	DefaultMarketingBudget  = int64(2_000_000)

	FranchiseQualityThreshold = 75
	FranchiseProfitThreshold  = int64(10_000_000)
	ShareProfitThreshold      = int64(10_000_000)
)

var (
	ErrGameOver           = errors.New("game over: the studio is bankrupt")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNoDraft            = errors.New("no project in development")
	ErrDraftInProgress    = errors.New("a project is already in development")
	ErrInvalidStage       = errors.New("command not allowed in the current project stage")
	ErrRosterFull         = errors.New("cast is full")
	ErrTalentNotFound     = errors.New("talent not found")
	ErrAlreadyHired       = errors.New("talent already hired")
	ErrBiddingWarPending  = errors.New("a bidding war must be resolved first")
	ErrNoBiddingWar       = errors.New("no bidding war in progress")
	ErrReturneesPending   = errors.New("returning talent must be confirmed first")
	ErrNoReturnees        = errors.New("no returning talent to confirm")
	ErrTitleRequired      = errors.New("project title is required")
	ErrGenreRequired      = errors.New("project genre is required")
	ErrScriptRequired     = errors.New("a writer or purchased script is required")
	ErrDirectorRequired   = errors.New("a director is required")
	ErrCastRequired       = errors.New("at least one actor is required")
	ErrUnknownGenre       = errors.New("unknown genre")
	ErrUnknownScript      = errors.New("unknown script")
	ErrBudgetOutOfRange   = errors.New("budget out of range")
	ErrMerchLocked        = errors.New("merchandise budget requires the merch upgrade")
	ErrUnknownChannel     = errors.New("unknown release channel")
	ErrUnknownBudget      = errors.New("unknown budget line")
	ErrProjectNotFound    = errors.New("project not found")
	ErrProjectNotFinished = errors.New("project is not finished")
	ErrUnknownUpgrade     = errors.New("unknown upgrade")
	ErrUpgradeMaxed       = errors.New("upgrade already at max level")
	ErrUnknownRights      = errors.New("unknown rights")
	ErrRightsOwned        = errors.New("rights already owned")
	ErrRightsNotOwned     = errors.New("rights not owned")
	ErrFranchiseNotFound  = errors.New("franchise not found")
	ErrSequelNotAllowed   = errors.New("only profitable releases can get a sequel")
	ErrNoLoan             = errors.New("no outstanding loan")
	ErrNoSave             = errors.New("no saved game")
	ErrCorruptSave        = errors.New("save document is corrupt")
)

// SafeNum coerces v to a finite number. Anything that is not a finite
// number, or a string that parses as one, becomes 0.
func SafeNum(v any) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	case json.Number:
		p, err := n.Float64()
		if err != nil {
			return 0
		}
		f = p
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = p
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampShare keeps a market share inside [MinMarketShare, MaxMarketShare].
func ClampShare(v float64) float64 {
	return clampFloat(SafeNum(v), MinMarketShare, MaxMarketShare)
}

// UpgradePrice is the price of the next level of an upgrade.
func UpgradePrice(baseCost int64, currentLevel int) int64 {
	return int64(math.Floor(float64(baseCost) * math.Pow(1.5, float64(currentLevel))))
}

// ReleaseYear maps a turn number onto the in-game calendar.
func ReleaseYear(turn int) int {
	return BaseYear + turn/12
}
