package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"papertrade/internal/delivery/http/dto"
	"papertrade/internal/domain"
	"papertrade/internal/middleware"
)

// WebHandler serves the portfolio, trading and quote pages
type WebHandler struct {
	portfolioService domain.PortfolioService
	tradingService   domain.TradingService
	quotes           domain.QuoteProvider
	logger           *zap.Logger
}

// NewWebHandler creates a new WebHandler
func NewWebHandler(
	portfolioService domain.PortfolioService,
	tradingService domain.TradingService,
	quotes domain.QuoteProvider,
	logger *zap.Logger,
) *WebHandler {
	return &WebHandler{
		portfolioService: portfolioService,
		tradingService:   tradingService,
		quotes:           quotes,
		logger:           logger.Named("web_handler"),
	}
}

// HandleIndex renders the portfolio
// GET /
func (h *WebHandler) HandleIndex(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	portfolio, err := h.portfolioService.GetPortfolio(c.Request().Context(), userID)
	if err != nil {
		return internalError(c, h.logger, err)
	}

	return RenderPage(c, http.StatusOK, "index", &dto.Page{
		Portfolio: portfolio,
		Flash:     middleware.PopFlash(c),
	})
}

// HandleBuy renders the buy form
// GET /buy
func (h *WebHandler) HandleBuy(c echo.Context) error {
	return RenderPage(c, http.StatusOK, "buy", &dto.Page{})
}

// HandleBuyPost submits a buy order
// POST /buy
func (h *WebHandler) HandleBuyPost(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	var form dto.TradeForm
	if err := c.Bind(&form); err != nil {
		return Apology(c, http.StatusBadRequest, "Invalid form submission")
	}

	if _, err := h.tradingService.Buy(c.Request().Context(), userID, form.Symbol, form.Shares); err != nil {
		return renderFormError(c, h.logger, "buy", &dto.Page{Symbol: form.Symbol, Shares: form.Shares}, err)
	}

	middleware.SetFlash(c, "Bought!")
	return c.Redirect(http.StatusFound, "/")
}

// HandleSell renders the sell form listing the symbols the user holds
// GET /sell
func (h *WebHandler) HandleSell(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	symbols, err := h.portfolioService.OwnedSymbols(c.Request().Context(), userID)
	if err != nil {
		return internalError(c, h.logger, err)
	}
	return RenderPage(c, http.StatusOK, "sell", &dto.Page{Symbols: symbols})
}

// HandleSellPost submits a sell order
// POST /sell
func (h *WebHandler) HandleSellPost(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	var form dto.TradeForm
	if err := c.Bind(&form); err != nil {
		return Apology(c, http.StatusBadRequest, "Invalid form submission")
	}

	ctx := c.Request().Context()
	if _, err := h.tradingService.Sell(ctx, userID, form.Symbol, form.Shares); err != nil {
		symbols, lerr := h.portfolioService.OwnedSymbols(ctx, userID)
		if lerr != nil {
			return internalError(c, h.logger, lerr)
		}
		page := &dto.Page{Symbols: symbols, Symbol: form.Symbol, Shares: form.Shares}
		return renderFormError(c, h.logger, "sell", page, err)
	}

	middleware.SetFlash(c, "Sold!")
	return c.Redirect(http.StatusFound, "/")
}

// HandleHistory lists every executed trade, most recent first
// GET /history
func (h *WebHandler) HandleHistory(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	entries, err := h.portfolioService.History(c.Request().Context(), userID)
	if err != nil {
		return internalError(c, h.logger, err)
	}
	return RenderPage(c, http.StatusOK, "history", &dto.Page{Entries: entries})
}

// HandleQuote renders the quote form
// GET /quote
func (h *WebHandler) HandleQuote(c echo.Context) error {
	return RenderPage(c, http.StatusOK, "quote", &dto.Page{})
}

// HandleQuotePost looks up a symbol
// POST /quote
func (h *WebHandler) HandleQuotePost(c echo.Context) error {
	var form dto.QuoteForm
	if err := c.Bind(&form); err != nil {
		return Apology(c, http.StatusBadRequest, "Invalid form submission")
	}

	quote, err := h.quotes.Lookup(c.Request().Context(), form.Symbol)
	if err != nil {
		return renderFormError(c, h.logger, "quote", &dto.Page{Symbol: form.Symbol}, err)
	}
	return RenderPage(c, http.StatusOK, "quoted", &dto.Page{Quote: quote})
}

// RegisterWebRoutes registers all web routes (HTML pages)
func RegisterWebRoutes(e *echo.Echo, web *WebHandler, auth *AuthHandler, authMiddleware echo.MiddlewareFunc) {
	// Public routes
	e.GET("/login", auth.HandleLogin)
	e.POST("/login", auth.HandleLoginPost)
	e.GET("/logout", auth.HandleLogout)
	e.GET("/register", auth.HandleRegister)
	e.POST("/register", auth.HandleRegisterPost)

	// Protected routes (require a session)
	e.GET("/", web.HandleIndex, authMiddleware)
	e.GET("/buy", web.HandleBuy, authMiddleware)
	e.POST("/buy", web.HandleBuyPost, authMiddleware)
	e.GET("/sell", web.HandleSell, authMiddleware)
	e.POST("/sell", web.HandleSellPost, authMiddleware)
	e.GET("/history", web.HandleHistory, authMiddleware)
	e.GET("/quote", web.HandleQuote, authMiddleware)
	e.POST("/quote", web.HandleQuotePost, authMiddleware)
}
