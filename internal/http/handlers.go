package http

import (
	"errors"
	"net/http"
	"strings"

	"tracker/internal/app"
	"tracker/internal/core"
	"tracker/internal/input"
	"tracker/internal/log"
	"tracker/internal/render"
)

type transactionResponse struct {
	core.Transaction
	SignedAmount  string `json:"signed_amount"`
	DisplayDate   string `json:"display_date"`
	CategoryLabel string `json:"category_label"`
}

type summaryResponse struct {
	core.Summary
	IncomeDisplay   string `json:"income_display"`
	ExpensesDisplay string `json:"expenses_display"`
	BalanceDisplay  string `json:"balance_display"`
}

type listResponse struct {
	Period       core.Period           `json:"period"`
	Search       string                `json:"search,omitempty"`
	Today        core.Date             `json:"today"`
	Transactions []transactionResponse `json:"transactions"`
	Summary      summaryResponse       `json:"summary"`
	Empty        string                `json:"empty,omitempty"`
}

type periodResponse struct {
	Period  core.Period   `json:"period"`
	Periods []core.Period `json:"periods"`
}

func newTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		Transaction:   t,
		SignedAmount:  render.SignedAmount(t),
		DisplayDate:   render.FormatDate(t.Date),
		CategoryLabel: render.CategoryLabel(t.Category),
	}
}

func newSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		Summary:         s,
		IncomeDisplay:   render.FormatCurrency(s.Income),
		ExpensesDisplay: render.FormatCurrency(s.Expenses),
		BalanceDisplay:  render.FormatCurrency(s.Balance),
	}
}

func newListResponse(s app.Screen) listResponse {
	list := make([]transactionResponse, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		list = append(list, newTransactionResponse(t))
	}
	return listResponse{
		Period:       s.Period,
		Search:       s.Search,
		Today:        s.Today,
		Transactions: list,
		Summary:      newSummaryResponse(s.Summary),
		Empty:        s.Empty,
	}
}

// handleListTransactions serves the list and the period totals. period and
// q default to the tracker's current state.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	period, err := ParsePeriodParam(query, s.tracker.Period())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	search := s.tracker.SearchTerm()
	if query.Has("q") {
		search = sanitizeInput(query.Get("q"))
	}

	screen := s.tracker.Query(r.Context(), period, search)
	NewResponse().Data(newListResponse(screen)).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	period, err := ParsePeriodParam(r.URL.Query(), s.tracker.Period())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	screen := s.tracker.Query(r.Context(), period, "")
	NewResponse().Data(newSummaryResponse(screen.Summary)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	raw, err := ParseRaw(w, r)
	if err != nil {
		logger.WarnContext(r.Context(), "Unreadable request body",
			log.NewFields().WithOperation(log.OpAdd).WithError(err, log.ErrorTypeValidation).ToSlice()...)
		BadRequestError("Invalid request body").Write(w)
		return
	}

	t, err := s.tracker.Add(r.Context(), raw)
	if err != nil {
		BadRequestError(validationMessage(err)).Write(w)
		return
	}

	NewResponse().
		Status(http.StatusCreated).
		Notice(render.AddedNotice(t.Type)).
		Data(newTransactionResponse(t)).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r.PathValue("id"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	if !s.tracker.Delete(r.Context(), id) {
		NotFoundError("Transaction not found").Write(w)
		return
	}
	NewResponse().Notice(render.DeletedNotice()).Write(w)
}

func (s *Server) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	NewResponse().Data(periodResponse{Period: s.tracker.Period(), Periods: core.Periods()}).Write(w)
}

func (s *Server) handlePutPeriod(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("Invalid request body").Write(w)
		return
	}

	period, err := core.ParsePeriod(p.Get("period"))
	if err == nil {
		err = s.tracker.ChangePeriod(period)
	}
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	NewResponse().Data(periodResponse{Period: period, Periods: core.Periods()}).Write(w)
}

// validationMessage turns an input error into the message shown next to
// the form.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, input.ErrEmptyName):
		return "Please enter a name for the transaction."
	case errors.Is(err, input.ErrNameTooLong):
		return "Name is too long."
	case errors.Is(err, core.ErrInvalidAmount):
		return "Please enter a valid amount greater than zero."
	case errors.Is(err, core.ErrInvalidDate):
		return "Please enter a valid date (YYYY-MM-DD)."
	case errors.Is(err, core.ErrInvalidType):
		return "Type must be income or expense."
	default:
		return strings.TrimSpace(err.Error())
	}
}
