package database

import (
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/edjordao11/site/internal/models"
)

var ErrVideoNotFound = errors.New("video not found")

// VideoRepo handles video catalog database operations
type VideoRepo struct{}

// NewVideoRepo creates a new video repository
func NewVideoRepo() *VideoRepo {
	return &VideoRepo{}
}

const videoColumns = "id, title, description, price, duration, video_file_id, thumbnail_id, product_link, views, created_at"

// Create creates a new video
func (r *VideoRepo) Create(video *models.Video) error {
	result, err := DB.Exec(`
		INSERT INTO videos (title, description, price, duration, video_file_id, thumbnail_id, product_link)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, video.Title, video.Description, video.Price.String(), video.Duration,
		video.VideoFileID, video.ThumbnailID, video.ProductLink)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	video.ID = id

	return nil
}

// GetByID retrieves a video by ID
func (r *VideoRepo) GetByID(id int64) (*models.Video, error) {
	row := DB.QueryRow("SELECT "+videoColumns+" FROM videos WHERE id = ?", id)
	video, err := scanVideo(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrVideoNotFound
	}
	return video, err
}

// List retrieves videos matching the search query, sorted. An empty
// query matches everything.
func (r *VideoRepo) List(sort models.SortOption, search string) ([]*models.Video, error) {
	order := "created_at DESC"
	switch sort {
	case models.SortPriceAsc:
		order = "CAST(price AS REAL) ASC"
	case models.SortPriceDesc:
		order = "CAST(price AS REAL) DESC"
	case models.SortViewsDesc:
		order = "views DESC"
	case models.SortDurationDesc:
		order = "duration DESC"
	}

	query := "SELECT " + videoColumns + " FROM videos"
	args := []any{}
	if search != "" {
		query += " WHERE title LIKE ? OR description LIKE ?"
		like := "%" + search + "%"
		args = append(args, like, like)
	}
	query += " ORDER BY " + order

	rows, err := DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []*models.Video
	for rows.Next() {
		video, err := scanVideo(rows.Scan)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}

	return videos, rows.Err()
}

// IncrementViews bumps the view counter
func (r *VideoRepo) IncrementViews(id int64) error {
	result, err := DB.Exec("UPDATE videos SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrVideoNotFound
	}

	return nil
}

func scanVideo(scan func(dest ...any) error) (*models.Video, error) {
	video := &models.Video{}
	var price string
	var fileID, thumbID, link sql.NullString

	err := scan(
		&video.ID, &video.Title, &video.Description, &price, &video.Duration,
		&fileID, &thumbID, &link, &video.Views, &video.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	video.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	video.VideoFileID = fileID.String
	video.ThumbnailID = thumbID.String
	video.ProductLink = link.String

	return video, nil
}
