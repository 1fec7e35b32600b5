package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/edjordao11/site/internal/auth"
	"github.com/edjordao11/site/internal/database"
	"github.com/edjordao11/site/internal/models"
)

// buyerIdentity resolves the buyer id for the request: the user id
// for logged-in buyers, the echoed-back guest id from a previous
// attempt otherwise.
func buyerIdentity(c echo.Context) string {
	if user := auth.GetUserFromContext(c); user != nil {
		return strconv.FormatInt(user.ID, 10)
	}
	return c.QueryParam("buyer")
}

// listVideosHandler handles GET /api/videos
func listVideosHandler(c echo.Context) error {
	sort := models.SortOption(c.QueryParam("sort"))
	search := c.QueryParam("q")

	videos, err := videoRepo.List(sort, search)
	if err != nil {
		c.Logger().Error("list videos error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list videos",
		})
	}

	// The paid link never appears in catalog listings
	for _, video := range videos {
		video.ProductLink = ""
	}

	return c.JSON(http.StatusOK, videos)
}

// getVideoHandler handles GET /api/videos/:id
func getVideoHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid video id",
		})
	}

	video, err := videoRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "video not found",
			})
		}
		c.Logger().Error("get video error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load video",
		})
	}

	purchased := false
	if buyer := buyerIdentity(c); buyer != "" {
		purchased = orchestrator.HasUnlocked(buyer, video.ID)
	}
	if !purchased {
		video.ProductLink = ""
	}

	return c.JSON(http.StatusOK, map[string]any{
		"video":     video,
		"purchased": purchased,
	})
}

// incrementViewsHandler handles POST /api/videos/:id/views
func incrementViewsHandler(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid video id",
		})
	}

	if err := videoRepo.IncrementViews(id); err != nil {
		if errors.Is(err, database.ErrVideoNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "video not found",
			})
		}
		c.Logger().Error("increment views error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update views",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// listPurchasesHandler handles GET /api/purchases
func listPurchasesHandler(c echo.Context) error {
	user := auth.GetUserFromContext(c)

	purchases, err := purchaseRepo.ListByBuyer(strconv.FormatInt(user.ID, 10))
	if err != nil {
		c.Logger().Error("list purchases error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list purchases",
		})
	}

	return c.JSON(http.StatusOK, purchases)
}
