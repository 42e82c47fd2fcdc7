// Package http exposes the assistant and the ledger over a small JSON API,
// the same surface the dashboard frontend consumes.
package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"bank-assistant-go/internal/bot"
	"bank-assistant-go/internal/config"
	"bank-assistant-go/internal/models"
	"bank-assistant-go/internal/store"
)

type Server struct {
	cfg      *config.Config
	store    *store.Store
	bot      *bot.Bot
	sessions *sessions
}

func NewServer(cfg *config.Config, st *store.Store, b *bot.Bot) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors(cfg))
	r.Use(logging())

	s := &Server{cfg: cfg, store: st, bot: b, sessions: newSessions()}

	r.POST("/v1/auth/guest", s.authGuest)
	r.POST("/v1/auth/login", s.authLogin)
	r.POST("/v1/auth/logout", s.authLogout)
	r.POST("/v1/accounts/requests", s.requestAccount)

	// Catalog endpoints need no session at all.
	r.GET("/v1/bank", s.getBankInfo)
	r.GET("/v1/loans", s.getLoans)
	r.GET("/v1/schemes", s.getSchemes)
	r.GET("/v1/account-types", s.getAccountTypes)

	// Chat works for guests too; the bot itself gates account data.
	session := r.Group("/v1")
	session.Use(s.SessionMiddleware())
	{
		session.POST("/chat", s.handleChat)

		account := session.Group("")
		account.Use(RequireLogin())
		{
			account.GET("/account", s.getAccount)
			account.GET("/transactions", s.getTransactions)
			account.POST("/transfer", s.handleTransfer)
			account.GET("/bills", s.getBills)
			account.POST("/bills", s.addBill)
			account.POST("/bills/pay", s.payBill)
			account.GET("/spending", s.getSpending)
		}
	}

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	return r
}

func (s *Server) handleChat(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(s.cfg.ReqTimeoutSec)*time.Second)
	defer cancel()

	var input struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	sess := c.MustGet("session").(*bot.Session)
	reply := s.bot.Process(ctx, sess, input.Message)
	c.JSON(200, gin.H{"reply": reply, "history": sess.History})
}

func (s *Server) getAccount(c *gin.Context) {
	sess := c.MustGet("session").(*bot.Session)
	acct, err := s.store.GetAccount(sess.Username)
	if err != nil {
		c.JSON(404, gin.H{"error": "account_not_found"})
		return
	}
	c.JSON(200, gin.H{
		"username":       sess.Username,
		"name":           acct.Name,
		"account_number": acct.AccountNumber,
		"account_type":   acct.AccountType,
		"balance":        acct.Balance,
	})
}

func (s *Server) getTransactions(c *gin.Context) {
	sess := c.MustGet("session").(*bot.Session)
	txns, err := s.store.Transactions(sess.Username)
	if err != nil {
		c.JSON(404, gin.H{"error": "account_not_found"})
		return
	}
	c.JSON(200, txns)
}

func (s *Server) handleTransfer(c *gin.Context) {
	var input struct {
		Recipient string          `json:"recipient" binding:"required"`
		Amount    decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if !input.Amount.IsPositive() {
		c.JSON(400, gin.H{"error": "amount_must_be_positive"})
		return
	}

	sess := c.MustGet("session").(*bot.Session)
	txn, err := s.store.AppendTransaction(sess.Username, "Transfer to "+input.Recipient, input.Amount.Neg())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(201, txn)
}

func (s *Server) getBills(c *gin.Context) {
	c.JSON(200, s.store.Bills())
}

func (s *Server) addBill(c *gin.Context) {
	var bill models.Bill
	if err := c.ShouldBindJSON(&bill); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	sess := c.MustGet("session").(*bot.Session)
	if err := s.store.AddBill(sess.Username, bill); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(201, bill)
}

func (s *Server) payBill(c *gin.Context) {
	var input struct {
		Name   string          `json:"name" binding:"required"`
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	sess := c.MustGet("session").(*bot.Session)
	txn, err := s.store.PayBill(sess.Username, input.Name, input.Amount)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(200, txn)
}

func (s *Server) getSpending(c *gin.Context) {
	c.JSON(200, s.store.SpendingCategories())
}

func (s *Server) requestAccount(c *gin.Context) {
	var input struct {
		FullName        string `json:"full_name" binding:"required"`
		Email           string `json:"email" binding:"required"`
		Phone           string `json:"phone" binding:"required"`
		Address         string `json:"address" binding:"required"`
		AccountType     string `json:"account_type" binding:"required"`
		Username        string `json:"username" binding:"required"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
		AadharNumber    string `json:"aadhar_number" binding:"required"`
		PANNumber       string `json:"pan_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if input.Password != input.ConfirmPassword {
		c.JSON(400, gin.H{"error": "passwords_do_not_match"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(500, gin.H{"error": "encryption_failed"})
		return
	}

	req, err := s.store.RequestNewAccount(models.AccountRequest{
		FullName:     input.FullName,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		AccountType:  input.AccountType,
		Username:     input.Username,
		PasswordHash: string(hash),
		AadharNumber: input.AadharNumber,
		PANNumber:    input.PANNumber,
	})
	if err != nil {
		writeStoreError(c, err)
		return
	}

	c.JSON(201, gin.H{
		"request_id":   req.RequestID,
		"status":       req.Status,
		"request_date": req.RequestDate,
	})
}

func (s *Server) getBankInfo(c *gin.Context)     { c.JSON(200, s.store.BankInfo()) }
func (s *Server) getLoans(c *gin.Context)        { c.JSON(200, s.store.LoanProducts()) }
func (s *Server) getSchemes(c *gin.Context)      { c.JSON(200, s.store.GovernmentSchemes()) }
func (s *Server) getAccountTypes(c *gin.Context) { c.JSON(200, s.store.AccountTypes()) }

// writeStoreError maps ledger errors onto HTTP statuses.
func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		c.JSON(404, gin.H{"error": "account_not_found"})
	case errors.Is(err, store.ErrInsufficientFunds):
		c.JSON(422, gin.H{"error": "insufficient_funds"})
	case errors.Is(err, store.ErrInvalidInput):
		c.JSON(400, gin.H{"error": err.Error()})
	default:
		c.JSON(500, gin.H{"error": "internal_error"})
	}
}

func cors(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

func logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
