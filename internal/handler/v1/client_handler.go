package v1

import (
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain/client"
	"github.com/dmehra2102/prod-golang-projects/spabook/internal/service"
	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	svc *service.ClientService
}

func NewClientHandler(svc *service.ClientService) *ClientHandler {
	return &ClientHandler{svc: svc}
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req createClientRequest
	if !bindJSON(c, &req) {
		return
	}

	cl, err := h.svc.CreateClient(c.Request.Context(), &client.CreateClientCommand{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		AreasOfConcern: req.AreasOfConcern,
	}, actorFrom(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toClientResponse(cl))
}

func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	cl, err := h.svc.GetClient(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toClientResponse(cl))
}

// Search lists clients, optionally narrowed by ?search= on name or email.
func (h *ClientHandler) Search(c *gin.Context) {
	list, err := h.svc.SearchClients(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toClientResponses(list))
}
