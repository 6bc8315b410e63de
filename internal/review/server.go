package review

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anikonov/rent-radar/internal/model"
	"github.com/anikonov/rent-radar/internal/storage"
)

type ListingProvider interface {
	All(ctx context.Context, query storage.ListingQuery) ([]model.Listing, error)
}

// HTTP интерфейс ревью: таблица находок с фильтрами и выгрузка в csv.
// Фильтры те же, что были в старом дашборде: цена, балл, регулярка по тексту,
// только записи со ссылкой
type Server struct {
	listings ListingProvider
	addr     string
}

func NewServer(listingProvider ListingProvider, addr string) *Server {
	return &Server{
		listings: listingProvider,
		addr:     addr,
	}
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/api/matches", s.handleMatches)
	router.GET("/api/matches.csv", s.handleMatchesCSV)

	return router
}

func (s *Server) handleMatches(c *gin.Context) {
	query, err := queryFromRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listings, err := s.listings.All(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   len(listings),
		"matches": listings,
	})
}

// Та же выборка, но файлом. Записи идут в порядке добавления
func (s *Server) handleMatchesCSV(c *gin.Context) {
	query, err := queryFromRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listings, err := s.listings.All(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="matches.csv"`)

	w := csv.NewWriter(c.Writer)

	_ = w.Write([]string{
		"channel", "message_id", "published_at", "price_usd", "bedrooms",
		"district", "term", "contact", "score", "url", "text",
	})

	for _, listing := range listings {
		_ = w.Write(csvRow(listing))
	}

	w.Flush()
}

func csvRow(listing model.Listing) []string {
	price, bedrooms, district, contact := "", "", "", ""
	if listing.Price != nil {
		price = strconv.FormatFloat(*listing.Price, 'f', 2, 64)
	}
	if listing.Bedrooms != nil {
		bedrooms = strconv.Itoa(*listing.Bedrooms)
	}
	if listing.District != nil {
		district = *listing.District
	}
	if listing.Contact != nil {
		contact = *listing.Contact
	}

	return []string{
		listing.Channel,
		strconv.FormatInt(listing.MessageID, 10),
		listing.PublishedAt.Format("2006-01-02 15:04"),
		price,
		bedrooms,
		district,
		string(listing.Term),
		contact,
		strconv.Itoa(listing.Score),
		listing.Link,
		listing.Text,
	}
}

func queryFromRequest(c *gin.Context) (storage.ListingQuery, error) {
	var query storage.ListingQuery

	if v, ok, err := floatParam(c, "min_price"); err != nil {
		return query, err
	} else if ok {
		query.MinPrice = &v
	}
	if v, ok, err := floatParam(c, "max_price"); err != nil {
		return query, err
	} else if ok {
		query.MaxPrice = &v
	}
	if v, ok, err := intParam(c, "min_score"); err != nil {
		return query, err
	} else if ok {
		query.MinScore = &v
	}
	if v, ok, err := intParam(c, "max_score"); err != nil {
		return query, err
	} else if ok {
		query.MaxScore = &v
	}

	query.TextRegex = c.Query("q")
	query.OnlyWithLink = c.Query("only_links") == "true"

	if v, ok, err := intParam(c, "limit"); err != nil {
		return query, err
	} else if ok && v > 0 {
		query.Limit = uint64(v)
	}

	return query, nil
}

func floatParam(c *gin.Context, name string) (float64, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("bad %s: %q", name, raw)
	}
	return v, true, nil
}

func intParam(c *gin.Context, name string) (int, bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("bad %s: %q", name, raw)
	}
	return v, true, nil
}
