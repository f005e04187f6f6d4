package service

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyago/travel-planner-backend/internal/pkg/logger"
	"github.com/voyago/travel-planner-backend/internal/pkg/response"
	"github.com/voyago/travel-planner-backend/internal/search/types"
)

// Searcher runs an aggregated search
type Searcher interface {
	Search(ctx context.Context, req *types.SearchRequest) (*types.AggregateResult, error)
}

// SearchService exposes the flight and hotel search endpoints
type SearchService struct {
	aggregator Searcher
	logger     *logger.Logger
}

// NewSearchService creates a SearchService
func NewSearchService(aggregator Searcher, log *logger.Logger) *SearchService {
	if log == nil {
		log = logger.L()
	}
	return &SearchService{
		aggregator: aggregator,
		logger:     log.Named("search.service"),
	}
}

// RegisterRoutes registers the search routes
func (s *SearchService) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/search")
	group.POST("/flights", s.SearchFlights)
	group.POST("/hotels", s.SearchHotels)
}

// FlightSearchRequest is the POST /search/flights body
type FlightSearchRequest struct {
	Origin        string   `json:"origin" binding:"required"`
	Destination   string   `json:"destination" binding:"required"`
	DepartureDate string   `json:"departureDate" binding:"required"`
	ReturnDate    string   `json:"returnDate"`
	Adults        int      `json:"adults" binding:"required,min=1"`
	Children      int      `json:"children" binding:"min=0"`
	Currency      string   `json:"currency"`
	Providers     []string `json:"providers" binding:"required,min=1"`
}

// HotelSearchRequest is the POST /search/hotels body
type HotelSearchRequest struct {
	Destination  string   `json:"destination" binding:"required"`
	CheckInDate  string   `json:"checkInDate" binding:"required"`
	CheckOutDate string   `json:"checkOutDate" binding:"required"`
	Adults       int      `json:"adults" binding:"required,min=1"`
	Children     int      `json:"children" binding:"min=0"`
	Rooms        int      `json:"rooms" binding:"required,min=1"`
	Currency     string   `json:"currency"`
	Providers    []string `json:"providers" binding:"required,min=1"`
}

// SearchFlights handles POST /search/flights
func (s *SearchService) SearchFlights(c *gin.Context) {
	var req FlightSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	searchReq := &types.SearchRequest{
		Kind:        types.KindFlights,
		Origin:      strings.TrimSpace(req.Origin),
		Destination: strings.TrimSpace(req.Destination),
		StartDate:   req.DepartureDate,
		EndDate:     req.ReturnDate,
		Adults:      req.Adults,
		Children:    req.Children,
		Currency:    defaultCurrency(req.Currency),
		Providers:   toProviderIDs(req.Providers),
	}

	s.run(c, searchReq)
}

// SearchHotels handles POST /search/hotels
func (s *SearchService) SearchHotels(c *gin.Context) {
	var req HotelSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	searchReq := &types.SearchRequest{
		Kind:        types.KindHotels,
		Destination: strings.TrimSpace(req.Destination),
		StartDate:   req.CheckInDate,
		EndDate:     req.CheckOutDate,
		Adults:      req.Adults,
		Children:    req.Children,
		Rooms:       req.Rooms,
		Currency:    defaultCurrency(req.Currency),
		Providers:   toProviderIDs(req.Providers),
	}

	s.run(c, searchReq)
}

func (s *SearchService) run(c *gin.Context, req *types.SearchRequest) {
	result, err := s.aggregator.Search(c.Request.Context(), req)
	if err != nil {
		s.logger.Warn("search failed",
			zap.String("kind", string(req.Kind)),
			zap.String("destination", req.Destination),
			zap.Error(err))
		response.HandleError(c, err)
		return
	}

	response.Success(c, result)
}

func defaultCurrency(currency string) string {
	if currency == "" {
		return "USD"
	}
	return strings.ToUpper(currency)
}

func toProviderIDs(providers []string) []types.ProviderID {
	ids := make([]types.ProviderID, 0, len(providers))
	for _, p := range providers {
		ids = append(ids, types.ProviderID(strings.ToLower(strings.TrimSpace(p))))
	}
	return ids
}
