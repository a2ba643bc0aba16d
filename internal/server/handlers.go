package server

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/models"
	"tradejournal/internal/store"
	"tradejournal/internal/trading"
	"tradejournal/pkg/id"
)

// --- Request bodies ---

type createPlanRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	RiskRewardRatio float64 `json:"riskRewardRatio"`
	MaxLossAmount   float64 `json:"maxLossAmount"`
	InitialCapital  float64 `json:"initialCapital"`
	IsActive        bool    `json:"isActive"`
}

type createTradeRequest struct {
	Symbol        string             `json:"symbol"`
	Type          models.TradeType   `json:"type"`
	Status        models.TradeStatus `json:"status"`
	EntryPrice    float64            `json:"entryPrice"`
	EntryTime     time.Time          `json:"entryTime"`
	Quantity      float64            `json:"quantity"`
	StopLoss      float64            `json:"stopLoss"`
	TakeProfit    float64            `json:"takeProfit"`
	Notes         string             `json:"notes"`
	Screenshot    string             `json:"screenshot"`
	Tags          []string           `json:"tags"`
	TradingPlanID string             `json:"tradingPlanId"`
}

type closeTradeRequest struct {
	ExitPrice float64    `json:"exitPrice"`
	ExitTime  *time.Time `json:"exitTime"`
}

type createCapitalRequest struct {
	Amount        float64    `json:"amount"`
	Description   string     `json:"description"`
	AddedAt       *time.Time `json:"addedAt"`
	TradingPlanID string     `json:"tradingPlanId"`
}

// --- Trading plans ---

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlans(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if plans == nil {
		plans = []models.TradingPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewValidationError("body", nil, "invalid JSON"))
		return
	}
	if req.Name == "" {
		s.writeError(w, apperrors.NewValidationError("name", req.Name, "is required"))
		return
	}
	if req.InitialCapital < 0 {
		s.writeError(w, apperrors.NewValidationError("initialCapital", req.InitialCapital, "must not be negative"))
		return
	}
	if req.RiskRewardRatio == 0 {
		req.RiskRewardRatio = s.defaults.DefaultRiskReward
	}
	if req.RiskRewardRatio <= 0 {
		s.writeError(w, apperrors.NewValidationError("riskRewardRatio", req.RiskRewardRatio, "must be positive"))
		return
	}

	now := time.Now().UTC()
	plan := &models.TradingPlan{
		ID:              id.New(),
		Name:            req.Name,
		Description:     req.Description,
		RiskRewardRatio: req.RiskRewardRatio,
		MaxLossAmount:   req.MaxLossAmount,
		InitialCapital:  req.InitialCapital,
		IsActive:        req.IsActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.SavePlan(r.Context(), plan); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.store.GetPlan(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	planID := mux.Vars(r)["id"]
	plan, err := s.store.GetPlan(r.Context(), planID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// Decode over the stored plan so omitted fields keep their values.
	createdAt := plan.CreatedAt
	if err := json.NewDecoder(r.Body).Decode(plan); err != nil {
		s.writeError(w, apperrors.NewValidationError("body", nil, "invalid JSON"))
		return
	}
	plan.ID = planID
	plan.CreatedAt = createdAt
	if plan.Name == "" {
		s.writeError(w, apperrors.NewValidationError("name", plan.Name, "is required"))
		return
	}
	if plan.RiskRewardRatio <= 0 {
		s.writeError(w, apperrors.NewValidationError("riskRewardRatio", plan.RiskRewardRatio, "must be positive"))
		return
	}
	if plan.InitialCapital < 0 {
		s.writeError(w, apperrors.NewValidationError("initialCapital", plan.InitialCapital, "must not be negative"))
		return
	}
	plan.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdatePlan(r.Context(), plan); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePlan(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Trades ---

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.TradeFilter{
		PlanID: q.Get("planId"),
		Status: models.TradeStatus(q.Get("status")),
		Symbol: q.Get("symbol"),
	}
	trades, err := s.store.ListTrades(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if trades == nil {
		trades = []models.Trade{}
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var req createTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewValidationError("body", nil, "invalid JSON"))
		return
	}
	if req.Symbol == "" {
		s.writeError(w, apperrors.NewValidationError("symbol", req.Symbol, "is required"))
		return
	}
	if !req.Type.Valid() {
		s.writeError(w, apperrors.NewValidationError("type", req.Type, "must be BUY or SELL"))
		return
	}
	if !isFinitePositive(req.EntryPrice) {
		s.writeError(w, apperrors.NewValidationError("entryPrice", req.EntryPrice, "must be a finite positive number"))
		return
	}
	if !isFinitePositive(req.Quantity) {
		s.writeError(w, apperrors.NewValidationError("quantity", req.Quantity, "must be a finite positive number"))
		return
	}
	if req.TradingPlanID == "" {
		s.writeError(w, apperrors.NewValidationError("tradingPlanId", req.TradingPlanID, "is required"))
		return
	}
	switch req.Status {
	case "":
		req.Status = models.TradeOpen
	case models.TradePending, models.TradeOpen:
	default:
		s.writeError(w, apperrors.NewValidationError("status", req.Status, "new trades start PENDING or OPEN"))
		return
	}

	plan, err := s.store.GetPlan(r.Context(), req.TradingPlanID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.TakeProfit == 0 && req.StopLoss != 0 {
		req.TakeProfit = trading.SuggestedTakeProfit(req.EntryPrice, req.StopLoss, plan.RiskRewardRatio, req.Type)
	}
	if req.EntryTime.IsZero() {
		req.EntryTime = time.Now().UTC()
	}

	riskAmount := trading.RiskAmount(req.EntryPrice, req.StopLoss, req.Quantity, req.Type)
	rewardAmount := trading.RewardAmount(req.EntryPrice, req.TakeProfit, req.Quantity, req.Type)
	if plan.MaxLossAmount > 0 && !trading.WithinMaxLoss(riskAmount, plan.MaxLossAmount) {
		s.logger.Warn().
			Str("symbol", req.Symbol).
			Float64("risk", riskAmount).
			Float64("max_loss", plan.MaxLossAmount).
			Msg("trade risk exceeds plan max loss")
	}

	now := time.Now().UTC()
	trade := &models.Trade{
		ID:            id.New(),
		Symbol:        req.Symbol,
		Type:          req.Type,
		Status:        req.Status,
		EntryPrice:    req.EntryPrice,
		EntryTime:     req.EntryTime,
		Quantity:      req.Quantity,
		StopLoss:      req.StopLoss,
		TakeProfit:    req.TakeProfit,
		RiskAmount:    riskAmount,
		RewardAmount:  rewardAmount,
		Notes:         req.Notes,
		Screenshot:    req.Screenshot,
		Tags:          req.Tags,
		TradingPlanID: req.TradingPlanID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.SaveTrade(r.Context(), trade); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := s.store.GetTrade(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleUpdateTrade(w http.ResponseWriter, r *http.Request) {
	tradeID := mux.Vars(r)["id"]
	trade, err := s.store.GetTrade(r.Context(), tradeID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if trade.Status.Terminal() {
		s.writeError(w, apperrors.NewStateError("update", string(trade.Status), "closed or cancelled trades are immutable"))
		return
	}

	var req createTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewValidationError("body", nil, "invalid JSON"))
		return
	}
	if req.Symbol != "" {
		trade.Symbol = req.Symbol
	}
	if req.Type != "" {
		if !req.Type.Valid() {
			s.writeError(w, apperrors.NewValidationError("type", req.Type, "must be BUY or SELL"))
			return
		}
		trade.Type = req.Type
	}
	if req.EntryPrice != 0 {
		if !isFinitePositive(req.EntryPrice) {
			s.writeError(w, apperrors.NewValidationError("entryPrice", req.EntryPrice, "must be a finite positive number"))
			return
		}
		trade.EntryPrice = req.EntryPrice
	}
	if req.Quantity != 0 {
		if !isFinitePositive(req.Quantity) {
			s.writeError(w, apperrors.NewValidationError("quantity", req.Quantity, "must be a finite positive number"))
			return
		}
		trade.Quantity = req.Quantity
	}
	if !req.EntryTime.IsZero() {
		trade.EntryTime = req.EntryTime
	}
	if req.StopLoss != 0 {
		trade.StopLoss = req.StopLoss
	}
	if req.TakeProfit != 0 {
		trade.TakeProfit = req.TakeProfit
	}
	if req.Notes != "" {
		trade.Notes = req.Notes
	}
	if req.Screenshot != "" {
		trade.Screenshot = req.Screenshot
	}
	if req.Tags != nil {
		trade.Tags = req.Tags
	}

	// Risk figures follow the edited prices.
	trade.RiskAmount = trading.RiskAmount(trade.EntryPrice, trade.StopLoss, trade.Quantity, trade.Type)
	trade.RewardAmount = trading.RewardAmount(trade.EntryPrice, trade.TakeProfit, trade.Quantity, trade.Type)
	trade.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTrade(r.Context(), trade); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTrade(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOpenTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := s.store.OpenTrade(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	var req closeTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewValidationError("body", nil, "invalid JSON"))
		return
	}

	var exitTime time.Time
	if req.ExitTime != nil {
		exitTime = *req.ExitTime
	}
	trade, err := s.store.CloseTrade(r.Context(), mux.Vars(r)["id"], req.ExitPrice, exitTime)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleCancelTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := s.store.CancelTrade(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

// --- Capital additions ---

func (s *Server) handleListCapital(w http.ResponseWriter, r *http.Request) {
	additions, err := s.store.ListCapitalAdditions(r.Context(), r.URL.Query().Get("planId"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if additions == nil {
		additions = []models.CapitalAddition{}
	}
	writeJSON(w, http.StatusOK, additions)
}

func (s *Server) handleCreateCapital(w http.ResponseWriter, r *http.Request) {
	var req createCapitalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewValidationError("body", nil, "invalid JSON"))
		return
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		s.writeError(w, apperrors.NewValidationError("amount", req.Amount, "must be greater than 0"))
		return
	}
	if req.TradingPlanID == "" {
		s.writeError(w, apperrors.NewValidationError("tradingPlanId", req.TradingPlanID, "is required"))
		return
	}
	if _, err := s.store.GetPlan(r.Context(), req.TradingPlanID); err != nil {
		s.writeError(w, err)
		return
	}

	addedAt := time.Now().UTC()
	if req.AddedAt != nil {
		addedAt = *req.AddedAt
	}
	addition := &models.CapitalAddition{
		ID:            id.New(),
		Amount:        req.Amount,
		Description:   req.Description,
		AddedAt:       addedAt,
		TradingPlanID: req.TradingPlanID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.SaveCapitalAddition(r.Context(), addition); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addition)
}

func (s *Server) handleDeleteCapital(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCapitalAddition(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Statistics ---

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	planID := r.URL.Query().Get("planId")
	trades, capital, err := s.closedTradesAndCapital(r, planID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trading.ComputeStats(trades, capital))
}

func (s *Server) handleEquity(w http.ResponseWriter, r *http.Request) {
	planID := r.URL.Query().Get("planId")
	trades, capital, err := s.closedTradesAndCapital(r, planID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	points := trading.EquityCurve(trades, capital)
	if points == nil {
		points = []models.EquityPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

// closedTradesAndCapital loads the closed trades in scope and the effective
// capital backing them: the plan's initial capital plus its deposits, or the
// sum over all plans when no plan is given. The configured default applies
// when no capital figure exists at all.
func (s *Server) closedTradesAndCapital(r *http.Request, planID string) ([]models.Trade, float64, error) {
	ctx := r.Context()
	trades, err := s.store.ListTrades(ctx, store.TradeFilter{PlanID: planID, Status: models.TradeClosed})
	if err != nil {
		return nil, 0, err
	}

	var capital float64
	if planID != "" {
		plan, err := s.store.GetPlan(ctx, planID)
		if err != nil {
			return nil, 0, err
		}
		added, err := s.store.CapitalAddedTotal(ctx, planID)
		if err != nil {
			return nil, 0, err
		}
		capital = plan.InitialCapital + added
	} else {
		plans, err := s.store.ListPlans(ctx)
		if err != nil {
			return nil, 0, err
		}
		for _, p := range plans {
			added, err := s.store.CapitalAddedTotal(ctx, p.ID)
			if err != nil {
				return nil, 0, err
			}
			capital += p.InitialCapital + added
		}
	}
	if capital == 0 {
		capital = s.defaults.DefaultInitialCapital
	}
	return trades, capital, nil
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	case apperrors.IsState(err):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func isFinitePositive(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f > 0
}
