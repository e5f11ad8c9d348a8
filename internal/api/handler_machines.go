package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plantops-backend/internal/model"
)

// machineBoardEntry is one tile of the per-machine status board. Machines
// with no status row yet show as running, matching the board's historical
// default.
type machineBoardEntry struct {
	Machine   string     `json:"machine"`
	Product   string     `json:"product"`
	Operator  string     `json:"operator"`
	Status    string     `json:"status"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// GetMachineBoard handles GET /api/machines: the configured machine list
// merged with whatever statuses have been recorded.
func (h *Handler) GetMachineBoard(c *gin.Context) {
	statuses, err := h.store.ListMachineStatuses(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machine statuses"})
		return
	}

	byName := make(map[string]model.MachineStatus, len(statuses))
	for _, st := range statuses {
		byName[st.Machine] = st
	}

	board := make([]machineBoardEntry, 0, len(h.machines))
	for _, name := range h.machines {
		if st, ok := byName[name]; ok {
			updated := st.UpdatedAt
			board = append(board, machineBoardEntry{
				Machine:   name,
				Product:   st.Product,
				Operator:  st.Operator,
				Status:    st.Status,
				UpdatedAt: &updated,
			})
		} else {
			board = append(board, machineBoardEntry{Machine: name, Status: model.StatusInjection})
		}
	}
	c.JSON(http.StatusOK, board)
}

type putMachineStatusRequest struct {
	Product  string `json:"product"`
	Operator string `json:"operator"`
	Status   string `json:"status" binding:"required"`
}

// PutMachineStatus handles PUT /api/machines/:name, upserting the machine's
// current state in place. A breakdown dispatches push alerts to subscribers
// of that machine.
func (h *Handler) PutMachineStatus(c *gin.Context) {
	name := c.Param("name")
	known := false
	for _, m := range h.machines {
		if m == name {
			known = true
			break
		}
	}
	if !known {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown machine"})
		return
	}

	var req putMachineStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !model.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	st := model.MachineStatus{
		Machine:  name,
		Product:  req.Product,
		Operator: req.Operator,
		Status:   req.Status,
	}
	if err := h.store.UpsertMachineStatus(c.Request.Context(), &st); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.Status == model.StatusBreakdown && h.alerts != nil {
		h.alerts.Dispatch(name)
	}

	c.JSON(http.StatusOK, st)
}
