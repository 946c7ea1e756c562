package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usercrud/internal/application/ports"
	domain "usercrud/internal/domain/record"
	"usercrud/internal/interface/api/rest/dto/record"
	"usercrud/internal/interface/api/rest/middleware"
	"usercrud/internal/interface/api/rest/validator"
)

type RecordController struct {
	recordService ports.RecordService
	notifier      ports.SubmissionNotifier
	logger        *zap.Logger
}

func NewRecordController(
	r *gin.Engine,
	recordService ports.RecordService,
	notifier ports.SubmissionNotifier,
	logger *zap.Logger,
	createLimit gin.HandlerFunc,
) *RecordController {
	rc := &RecordController{
		recordService: recordService,
		notifier:      notifier,
		logger:        logger,
	}

	p := RecordPolicy
	r.POST(RouteRecords, createLimit, p.Require(ActionCreate), rc.CreateHandler)
	r.GET(RouteRecords, p.Require(ActionList), rc.ListHandler)
	r.GET(RouteRecordsDeleted, p.Require(ActionListDeleted), rc.ListDeletedHandler)
	r.GET(RouteRecord, p.Require(ActionRetrieve), rc.RetrieveHandler)
	r.PUT(RouteRecord, p.Require(ActionUpdate), rc.UpdateHandler)
	r.PATCH(RouteRecord, p.Require(ActionPartialUpdate), rc.PartialUpdateHandler)
	r.DELETE(RouteRecord, p.Require(ActionDestroy), rc.DestroyHandler)
	r.POST(RouteRecordHardDel, p.Require(ActionHardDelete), rc.HardDeleteHandler)
	r.POST(RouteRecordRestore, p.Require(ActionRestore), rc.RestoreHandler)

	return rc
}

func (rc *RecordController) CreateHandler(c *gin.Context) {
	payload, ok := rc.bindPayload(c, false)
	if !ok {
		return
	}

	r, err := rc.recordService.Create(c.Request.Context(), payload)
	if err != nil {
		rc.fail(c, "Create()", "failed to create a record", err)
		return
	}

	// staff entries are not announced to the admin mailbox
	if !middleware.IdentityFrom(c).IsStaff() {
		if err = rc.notifier.Notify(c.Request.Context(), r); err != nil {
			c.JSON(
				http.StatusInternalServerError,
				gin.H{"error": "failed to notify admin"},
			)
			rc.logger.Error("Notify() error", zap.Error(err), zap.Int64("record_id", int64(r.ID)))
			return
		}
	}

	c.JSON(http.StatusCreated, record.ToResponse(*r))
}

func (rc *RecordController) ListHandler(c *gin.Context) {
	params, ok := rc.bindPage(c)
	if !ok {
		return
	}

	page, err := rc.recordService.ListActive(c.Request.Context(), params)
	if err != nil {
		rc.fail(c, "ListActive()", "failed to get records", err)
		return
	}

	c.JSON(http.StatusOK, record.ToPageResponse(*page))
}

func (rc *RecordController) ListDeletedHandler(c *gin.Context) {
	params, ok := rc.bindPage(c)
	if !ok {
		return
	}

	page, err := rc.recordService.ListDeleted(c.Request.Context(), params)
	if err != nil {
		rc.fail(c, "ListDeleted()", "failed to get deleted records", err)
		return
	}

	c.JSON(http.StatusOK, record.ToPageResponse(*page))
}

func (rc *RecordController) RetrieveHandler(c *gin.Context) {
	id, ok := rc.bindID(c)
	if !ok {
		return
	}

	r, err := rc.recordService.GetActive(c.Request.Context(), id)
	if err != nil {
		rc.fail(c, "GetActive()", "failed to get a record", err)
		return
	}

	c.JSON(http.StatusOK, record.ToResponse(*r))
}

func (rc *RecordController) UpdateHandler(c *gin.Context) {
	rc.update(c, false)
}

func (rc *RecordController) PartialUpdateHandler(c *gin.Context) {
	rc.update(c, true)
}

func (rc *RecordController) update(c *gin.Context, partial bool) {
	id, ok := rc.bindID(c)
	if !ok {
		return
	}
	payload, ok := rc.bindPayload(c, partial)
	if !ok {
		return
	}

	r, err := rc.recordService.Update(c.Request.Context(), id, payload, partial)
	if err != nil {
		rc.fail(c, "Update()", "failed to update a record", err)
		return
	}

	c.JSON(http.StatusOK, record.ToResponse(*r))
}

func (rc *RecordController) DestroyHandler(c *gin.Context) {
	id, ok := rc.bindID(c)
	if !ok {
		return
	}

	if err := rc.recordService.SoftDelete(c.Request.Context(), id); err != nil {
		rc.fail(c, "SoftDelete()", "failed to delete a record", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (rc *RecordController) HardDeleteHandler(c *gin.Context) {
	id, ok := rc.bindID(c)
	if !ok {
		return
	}

	if err := rc.recordService.HardDelete(c.Request.Context(), id); err != nil {
		rc.fail(c, "HardDelete()", "failed to delete a record", err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (rc *RecordController) RestoreHandler(c *gin.Context) {
	id, ok := rc.bindID(c)
	if !ok {
		return
	}

	r, err := rc.recordService.Restore(c.Request.Context(), id)
	if err != nil {
		rc.fail(c, "Restore()", "failed to restore a record", err)
		return
	}

	c.JSON(http.StatusOK, record.ToResponse(*r))
}

// bindID treats a malformed id like an unknown one.
func (rc *RecordController) bindID(c *gin.Context) (domain.ID, bool) {
	id, ok := validator.ParseID(c.Param("id"))
	if !ok {
		c.JSON(
			http.StatusNotFound,
			gin.H{"error": "record not found"},
		)
		return 0, false
	}

	return id, true
}

func (rc *RecordController) bindPage(c *gin.Context) (domain.ListParams, bool) {
	params, err := validator.ValidatePage(c.Query("page"), c.Query("page_size"), c.Query("search"))
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": err.Error()},
		)
		return params, false
	}

	return params, true
}

func (rc *RecordController) bindPayload(c *gin.Context, partial bool) (domain.Payload, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": "invalid request body"},
		)
		return domain.Payload{}, false
	}

	req, err := record.ParseRequest(body)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid request body",
				"details": vErr.Fields,
			})
			return domain.Payload{}, false
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": err.Error(),
		})
		return domain.Payload{}, false
	}

	if errs := validator.ValidateRecord(req, partial); errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": errs,
		})
		return domain.Payload{}, false
	}

	payload, err := record.ToPayload(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": map[string]string{domain.FieldDateOfBirth: err.Error()},
		})
		return domain.Payload{}, false
	}

	return payload, true
}

func (rc *RecordController) fail(c *gin.Context, op, msg string, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request body",
			"details": vErr.Fields,
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(
			http.StatusNotFound,
			gin.H{"error": "record not found"},
		)
	case errors.Is(err, domain.ErrNotDeleted):
		c.JSON(
			http.StatusBadRequest,
			gin.H{"error": domain.MsgNotDeleted},
		)
	default:
		c.JSON(
			http.StatusInternalServerError,
			gin.H{"error": msg},
		)
		rc.logger.Error(op+" error", zap.Error(err))
	}
}
