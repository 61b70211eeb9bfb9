package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/investment"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/movement"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/snapshot"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/valuation"
)

// Amounts travel as strings on the wire, same convention as the decimal
// columns in the store: no float rounding between client and engine.

type investmentResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Class              string `json:"class"`
	Currency           string `json:"currency"`
	TargetAnnualReturn string `json:"target_annual_return"`
	YieldStartYear     int    `json:"yield_start_year"`
	YieldStartMonth    int    `json:"yield_start_month"`
}

func toInvestmentResponse(inv *domain.Investment) investmentResponse {
	return investmentResponse{
		ID:                 inv.ID.String(),
		Name:               inv.Name,
		Class:              string(inv.Class),
		Currency:           string(inv.Currency),
		TargetAnnualReturn: inv.TargetAnnualReturn.String(),
		YieldStartYear:     inv.YieldStartYear,
		YieldStartMonth:    inv.YieldStartMonth,
	}
}

func (s *Server) handleListInvestments(w http.ResponseWriter, r *http.Request) {
	investments, err := s.investments.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	out := make([]investmentResponse, 0, len(investments))
	for _, inv := range investments {
		out = append(out, toInvestmentResponse(inv))
	}
	writeJSON(w, http.StatusOK, out)
}

type createInvestmentRequest struct {
	Name               string `json:"name"`
	Class              string `json:"class"`
	Currency           string `json:"currency"`
	TargetAnnualReturn string `json:"target_annual_return"`
	YieldStartYear     int    `json:"yield_start_year"`
	YieldStartMonth    int    `json:"yield_start_month"`
}

func (s *Server) handleCreateInvestment(w http.ResponseWriter, r *http.Request) {
	var req createInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	targetReturn := decimal.Zero
	if req.TargetAnnualReturn != "" {
		var err error
		targetReturn, err = decimal.NewFromString(req.TargetAnnualReturn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid target_annual_return")
			return
		}
	}

	inv, err := s.investments.Create(r.Context(), investment.CreateInput{
		Name:               req.Name,
		Class:              domain.InvestmentClass(req.Class),
		Currency:           domain.Currency(req.Currency),
		TargetAnnualReturn: targetReturn,
		YieldStartYear:     req.YieldStartYear,
		YieldStartMonth:    req.YieldStartMonth,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toInvestmentResponse(inv))
}

type updateInvestmentRequest struct {
	Name               *string `json:"name"`
	Currency           *string `json:"currency"`
	TargetAnnualReturn *string `json:"target_annual_return"`
	YieldStartYear     *int    `json:"yield_start_year"`
	YieldStartMonth    *int    `json:"yield_start_month"`
}

func (s *Server) handleUpdateInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid investment id")
		return
	}

	var req updateInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := investment.UpdateInput{
		Name:            req.Name,
		YieldStartYear:  req.YieldStartYear,
		YieldStartMonth: req.YieldStartMonth,
	}
	if req.Currency != nil {
		currency := domain.Currency(*req.Currency)
		input.Currency = &currency
	}
	if req.TargetAnnualReturn != nil {
		targetReturn, err := decimal.NewFromString(*req.TargetAnnualReturn)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid target_annual_return")
			return
		}
		input.TargetAnnualReturn = &targetReturn
	}

	inv, err := s.investments.Update(r.Context(), id, input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toInvestmentResponse(inv))
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid investment id")
		return
	}

	if err := s.investments.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type snapshotResponse struct {
	InvestmentID string  `json:"investment_id"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	Native       *string `json:"closing_capital"`     // null when no trustworthy value exists
	USD          *string `json:"closing_capital_usd"` // null when no trustworthy value exists
	FXRate       *string `json:"fx_rate,omitempty"`
	Failed       bool    `json:"failed"` // payload present but undecryptable; render as a dash
	IsClosed     bool    `json:"is_closed"`
}

func toSnapshotResponse(snap *domain.SnapshotMonth) snapshotResponse {
	out := snapshotResponse{
		InvestmentID: snap.InvestmentID.String(),
		Year:         snap.Year,
		Month:        snap.Month,
		Failed:       snap.Failed,
		IsClosed:     snap.IsClosed,
	}

	if snap.Capital.HasRealValue() {
		native := snap.Capital.Native.String()
		usd := snap.Capital.USD.String()
		out.Native = &native
		out.USD = &usd
	}

	if snap.FXRate != nil {
		rate := snap.FXRate.String()
		out.FXRate = &rate
	}

	return out
}

func (s *Server) handleGetSnapshots(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid investment id")
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	snaps, err := s.snapshots.GetYear(r.Context(), id, year)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	out := make([]snapshotResponse, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, toSnapshotResponse(snap))
	}
	writeJSON(w, http.StatusOK, out)
}

type upsertSnapshotRequest struct {
	Native *string `json:"closing_capital"`
	USD    *string `json:"closing_capital_usd"`
	FXRate *string `json:"fx_rate"`
}

func (s *Server) handleUpsertSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid investment id")
		return
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}

	var req upsertSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := snapshot.UpsertInput{InvestmentID: id, Year: year, Month: month}
	if input.NativeAmount, err = parseOptionalAmount(req.Native); err != nil {
		writeError(w, http.StatusBadRequest, "invalid closing_capital")
		return
	}
	if input.USDAmount, err = parseOptionalAmount(req.USD); err != nil {
		writeError(w, http.StatusBadRequest, "invalid closing_capital_usd")
		return
	}
	if input.FXRate, err = parseOptionalAmount(req.FXRate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid fx_rate")
		return
	}

	snap, err := s.snapshots.Upsert(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSnapshotResponse(snap))
}

type movementResponse struct {
	ID           string `json:"id"`
	InvestmentID string `json:"investment_id"`
	Date         string `json:"date"`
	Type         string `json:"type"`
	Currency     string `json:"currency"`
	Amount       string `json:"amount"`
	Failed       bool   `json:"failed"`
}

func toMovementResponse(mov *domain.Movement) movementResponse {
	return movementResponse{
		ID:           mov.ID.String(),
		InvestmentID: mov.InvestmentID.String(),
		Date:         mov.Date.Format("2006-01-02"),
		Type:         string(mov.Type),
		Currency:     string(mov.Currency),
		Amount:       mov.Amount.String(),
		Failed:       mov.Failed,
	}
}

func (s *Server) handleListMovements(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	movements, err := s.movements.ListYear(r.Context(), year)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	out := make([]movementResponse, 0, len(movements))
	for _, mov := range movements {
		out = append(out, toMovementResponse(mov))
	}
	writeJSON(w, http.StatusOK, out)
}

type movementRequest struct {
	InvestmentID string `json:"investment_id"`
	Date         string `json:"date"` // YYYY-MM-DD
	Type         string `json:"type"`
	Currency     string `json:"currency"`
	Amount       string `json:"amount"`
}

func (req movementRequest) toInput() (movement.Input, error) {
	id, err := uuid.Parse(req.InvestmentID)
	if err != nil {
		return movement.Input{}, errors.New("invalid investment_id")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return movement.Input{}, errors.New("invalid date")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return movement.Input{}, errors.New("invalid amount")
	}

	return movement.Input{
		InvestmentID: id,
		Date:         date,
		Type:         domain.MovementType(req.Type),
		Currency:     domain.Currency(req.Currency),
		Amount:       amount,
	}, nil
}

func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mov, err := s.movements.Create(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMovementResponse(mov))
}

func (s *Server) handleUpdateMovement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	var req movementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	mov, err := s.movements.Update(r.Context(), id, input)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMovementResponse(mov))
}

func (s *Server) handleDeleteMovement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid movement id")
		return
	}

	if err := s.movements.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type investmentSeriesResponse struct {
	Investment   investmentResponse `json:"investment"`
	Values       []string           `json:"values"`
	FailedMonths []int              `json:"failed_months,omitempty"`
}

type netWorthReportResponse struct {
	Year             int                        `json:"year"`
	Investments      []investmentSeriesResponse `json:"investments"`
	Portfolio        []string                   `json:"portfolio"`
	Accounts         []string                   `json:"accounts"`
	NetWorth         []string                   `json:"net_worth"`
	ProjectedJanuary string                     `json:"projected_january"`
	Variation        []string                   `json:"variation"`
	Flows            []string                   `json:"flows"`
	RealReturns      []string                   `json:"real_returns"`
}

func (s *Server) handleNetWorthReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	rate := s.defaultRate
	if raw := r.URL.Query().Get("rate"); raw != "" {
		rate, err = decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid rate")
			return
		}
	}

	report, err := s.netWorth.YearReport(r.Context(), year, rate)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	out := netWorthReportResponse{
		Year:             report.Year,
		Portfolio:        seriesStrings(report.Portfolio),
		Accounts:         seriesStrings(report.Accounts),
		NetWorth:         seriesStrings(report.NetWorth),
		ProjectedJanuary: report.ProjectedJanuary.String(),
		Variation:        seriesStrings(report.Variation),
		Flows:            seriesStrings(report.Flows),
		RealReturns:      seriesStrings(report.RealReturns),
	}
	for _, inv := range report.Investments {
		out.Investments = append(out.Investments, investmentSeriesResponse{
			Investment:   toInvestmentResponse(inv.Investment),
			Values:       seriesStrings(inv.Values),
			FailedMonths: inv.FailedMonths,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func seriesStrings(s valuation.Series) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = v.String()
	}
	return out
}

func parseOptionalAmount(raw *string) (*decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	amount, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, err
	}
	return &amount, nil
}

// writeServiceError maps domain errors to HTTP status codes
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrPeriodClosed),
		errors.Is(err, domain.ErrHasClosedValues):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrConversionUnavailable):
		writeError(w, http.StatusBadRequest, err.Error())
	case strings.Contains(err.Error(), "must be") ||
		strings.Contains(err.Error(), "must reference") ||
		strings.Contains(err.Error(), "cannot be"):
		// Validation errors from domain Validate methods
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
