package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campuswear/uniform-orderflow/internal/aws"
	"github.com/campuswear/uniform-orderflow/internal/cart"
	"github.com/campuswear/uniform-orderflow/internal/checkout"
	"github.com/campuswear/uniform-orderflow/internal/entitlement"
	"github.com/campuswear/uniform-orderflow/internal/idempotency"
	"github.com/campuswear/uniform-orderflow/internal/orders"
	"github.com/campuswear/uniform-orderflow/internal/stock"
	"github.com/campuswear/uniform-orderflow/internal/students"
	"github.com/campuswear/uniform-orderflow/internal/validation"
)

// HandlerConfig groups dependencies for the checkout handlers.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	CloudWatchClient aws.CloudWatchAPI
	StudentsTable    string
	OrdersTable      string
	InventoryTable   string
	IdempotencyTable string
	QueueURL         string
	TTLWindow        time.Duration
	ClaimWindow      time.Duration
	Logger           zerolog.Logger
}

// RegisterCheckoutRoutes wires the engine behind the checkout API.
func RegisterCheckoutRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	log := cfg.Logger

	idempStore := idempotency.NewStore(cfg.DynamoDBClient, cfg.IdempotencyTable, cfg.TTLWindow)
	studentStore := students.NewStore(cfg.DynamoDBClient, cfg.StudentsTable)
	orderStore := orders.NewStore(cfg.DynamoDBClient, cfg.OrdersTable)

	resolver := stock.NewResolver(stock.NewDynamoSource(cfg.DynamoDBClient, cfg.InventoryTable), log)

	var publisher *aws.Publisher
	if cfg.SQSClient != nil && cfg.QueueURL != "" {
		publisher = aws.NewPublisher(cfg.SQSClient, cfg.QueueURL)
	}
	var metrics checkout.Counter
	if cfg.CloudWatchClient != nil {
		metrics = aws.NewMetrics(cfg.CloudWatchClient)
	}

	creator := checkout.NewStoreCreator(orderStore, publisher, cfg.ClaimWindow, log)
	engine := checkout.NewEngine(
		studentStore,
		resolver,
		checkout.NewBuilder(),
		checkout.NewSequencer(creator, log),
		metrics,
		log,
	)

	r.POST("/cart/validate", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CheckoutRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		result, err := engine.Validate(ctx, req.StudentID, toCartLines(req.Lines))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "validation_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"valid":      result.Blocked == "" && len(result.Violations) == 0,
			"blocked":    result.Blocked,
			"violations": result.Violations,
			"message":    result.Message,
		})
	})

	r.POST("/checkout", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CheckoutRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		// Require idempotency key header: the engine is not reentrant-safe
		// for overlapping attempts by one student.
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing_idempotency_key"})
			return
		}

		created, err := idempStore.CreateIfNotExists(ctx, idempKey, req.StudentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
			return
		}
		if !created {
			replayAttempt(c, idempStore, idempKey)
			return
		}

		correlationID := c.GetHeader("X-Request-Id")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		log.Info().
			Str("student_id", req.StudentID).
			Str("correlation_id", correlationID).
			Int("lines", len(req.Lines)).
			Msg("checkout attempt")

		result, err := engine.Checkout(ctx, req.StudentID, toCartLines(req.Lines), checkout.Intent(req.Intent))
		if err != nil {
			_ = idempStore.MarkFailed(ctx, idempKey, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout_failed", "detail": err.Error()})
			return
		}

		status, body := renderResult(result)
		raw, _ := json.Marshal(body)
		if result.Outcome != nil && len(result.Outcome.Created) == 0 && len(result.Outcome.Failed) > 0 {
			// nothing persisted: let the client retry with the same key
			_ = idempStore.MarkFailed(ctx, idempKey, "all drafts failed to persist")
		} else {
			_ = idempStore.MarkDone(ctx, idempKey, string(raw), status)
		}
		c.JSON(status, body)
	})

	r.GET("/students/:id/entitlements", func(c *gin.Context) {
		ctx := c.Request.Context()
		studentID := c.Param("id")

		elig, usage, err := studentStore.GetSnapshot(ctx, studentID)
		if err == students.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "student_not_found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "eligibility_unavailable", "detail": err.Error()})
			return
		}

		items := c.QueryArray("item")
		allowances := make([]gin.H, 0, len(items))
		for _, name := range items {
			key := entitlement.Resolve(name)
			allowances = append(allowances, gin.H{
				"item":      name,
				"key":       key,
				"max":       entitlement.EffectiveMax(key, elig),
				"remaining": entitlement.Remaining(key, elig, usage),
			})
		}

		resp := gin.H{
			"student_id":          studentID,
			"blocked_due_to_void": usage.BlockedDueToVoid,
			"allowances":          allowances,
		}
		if elig.TotalItemTypeLimit != nil {
			resp["total_item_type_limit"] = *elig.TotalItemTypeLimit
			slotsLeft := *elig.TotalItemTypeLimit - usage.DistinctTypesInPlacedOrders
			if slotsLeft < 0 {
				slotsLeft = 0
			}
			resp["slots_left"] = slotsLeft
		}
		c.JSON(http.StatusOK, resp)
	})
}

// replayAttempt serves a duplicate checkout attempt from its stored record.
func replayAttempt(c *gin.Context, store *idempotency.Store, key string) {
	rec, err := store.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "attempt_record_missing"})
		return
	}
	switch rec.Status {
	case idempotency.StatusDone:
		if rec.ResponseBody != "" {
			c.Data(rec.ResponseStatus, "application/json", []byte(rec.ResponseBody))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "checkout already completed"})
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"message": "checkout already in progress"})
	case idempotency.StatusFailed:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "previous_attempt_failed", "note": rec.Note})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_attempt_status"})
	}
}

// renderResult maps an engine result onto a status code and body.
func renderResult(r *checkout.Result) (int, gin.H) {
	switch {
	case r.Blocked == checkout.BlockedVoidLockout:
		return http.StatusLocked, gin.H{"error": "void_lockout", "message": r.Message}
	case r.Blocked == checkout.BlockedLimitNotConfigured:
		return http.StatusConflict, gin.H{"error": "limit_not_configured", "message": r.Message}
	case len(r.Violations) > 0:
		return http.StatusUnprocessableEntity, gin.H{"error": "entitlement_violations", "violations": r.Violations, "message": r.Message}
	}

	body := gin.H{"message": r.Message, "clear_cart": r.ClearCart}
	if r.Outcome == nil {
		return http.StatusOK, body
	}

	placed := make([]gin.H, 0, len(r.Outcome.Created))
	for _, d := range r.Outcome.Created {
		placed = append(placed, gin.H{"order_number": d.OrderNumber, "type": d.Type, "receipt": d.Receipt})
	}
	body["orders"] = placed
	body["failed"] = len(r.Outcome.Failed)

	switch {
	case len(r.Outcome.Failed) == 0:
		return http.StatusCreated, body
	case len(r.Outcome.Created) > 0:
		return http.StatusMultiStatus, body
	default:
		return http.StatusBadGateway, body
	}
}

func toCartLines(lines []validation.CartLine) []cart.Line {
	out := make([]cart.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, cart.Line{
			ProductName:    l.ProductName,
			Size:           l.Size,
			EducationLevel: l.EducationLevel,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
		})
	}
	return out
}
