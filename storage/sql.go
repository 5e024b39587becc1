package storage

import (
	"context"
	"sort"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/milk9111/listeningjourney/journey"
	"github.com/milk9111/listeningjourney/overlay"
	"github.com/milk9111/listeningjourney/timeline"
)

type journeyRow struct {
	ID            string `gorm:"primaryKey"`
	Name          string
	AudioSrc      string
	TotalDuration float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (journeyRow) TableName() string { return "journeys" }

type sectionRow struct {
	JourneyID    string `gorm:"primaryKey"`
	Position     int    `gorm:"primaryKey"`
	SectionID    string
	Label        string
	Color        string
	StartTime    float64
	EndTime      float64
	Tempo        string
	Dynamics     string
	Articulation string
	Movement     string
	Weather      string
	NightMode    bool
	Scene        string
	Sky          string
	Ground       string
}

func (sectionRow) TableName() string { return "journey_sections" }

type itemRow struct {
	JourneyID      string `gorm:"primaryKey"`
	Position       int    `gorm:"primaryKey"`
	ItemID         string
	Kind           string
	Content        string
	Timestamp      float64
	Duration       float64
	X              float64
	Y              float64
	PlacedAtOffset float64
	EntryOffsetX   float64
	Scale          float64
}

func (itemRow) TableName() string { return "journey_items" }

// SQLStore keeps journeys in sqlite through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQL opens (and migrates) the sqlite database at path.
func OpenSQL(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "storage: open %s", path)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "storage: sql handle")
	}
	// sqlite allows one writer
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&journeyRow{}, &sectionRow{}, &itemRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "storage: migrate")
	}
	return &SQLStore{db: db}, nil
}

// Save writes doc and replaces its sections and items in one transaction.
func (s *SQLStore) Save(ctx context.Context, doc *journey.Document) error {
	if doc == nil {
		return errors.New("storage: nil document")
	}
	if err := validID(doc.ID); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := journeyRow{ID: doc.ID, Name: doc.Name, AudioSrc: doc.AudioSrc, TotalDuration: doc.TotalDuration}
		var existing journeyRow
		switch err := tx.First(&existing, "id = ?", doc.ID).Error; {
		case err == nil:
			row.CreatedAt = existing.CreatedAt
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		if err := tx.Where("journey_id = ?", doc.ID).Delete(&sectionRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("journey_id = ?", doc.ID).Delete(&itemRow{}).Error; err != nil {
			return err
		}
		if sections := toSectionRows(doc); len(sections) > 0 {
			if err := tx.Create(&sections).Error; err != nil {
				return err
			}
		}
		if items := toItemRows(doc); len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrapf(err, "storage: save %s", doc.ID)
}

func (s *SQLStore) Load(ctx context.Context, id string) (*journey.Document, error) {
	db := s.db.WithContext(ctx)
	var row journeyRow
	if err := db.First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(ErrNotFound, "%q", id)
		}
		return nil, errors.Wrapf(err, "storage: load %s", id)
	}

	var sections []sectionRow
	if err := db.Where("journey_id = ?", id).Order("position").Find(&sections).Error; err != nil {
		return nil, errors.Wrapf(err, "storage: load sections of %s", id)
	}
	var items []itemRow
	if err := db.Where("journey_id = ?", id).Order("position").Find(&items).Error; err != nil {
		return nil, errors.Wrapf(err, "storage: load items of %s", id)
	}

	doc := &journey.Document{
		ID:            row.ID,
		Name:          row.Name,
		AudioSrc:      row.AudioSrc,
		TotalDuration: row.TotalDuration,
	}
	for _, r := range sections {
		doc.Sections = append(doc.Sections, timeline.Section{
			ID:           r.SectionID,
			Label:        r.Label,
			Color:        r.Color,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			Tempo:        timeline.Tempo(r.Tempo),
			Dynamics:     r.Dynamics,
			Articulation: r.Articulation,
			Movement:     r.Movement,
			Weather:      r.Weather,
			NightMode:    r.NightMode,
			Scene:        r.Scene,
			Sky:          r.Sky,
			Ground:       r.Ground,
		})
	}
	for _, r := range items {
		doc.Items = append(doc.Items, overlay.Item{
			ID:             r.ItemID,
			Kind:           overlay.Kind(r.Kind),
			Content:        r.Content,
			Timestamp:      r.Timestamp,
			Duration:       r.Duration,
			Position:       overlay.Position{X: r.X, Y: r.Y},
			PlacedAtOffset: r.PlacedAtOffset,
			EntryOffsetX:   r.EntryOffsetX,
			Scale:          r.Scale,
		})
	}
	return doc, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Summary, error) {
	var rows []journeyRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "storage: list")
	}
	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, Summary{
			ID:            r.ID,
			Name:          r.Name,
			AudioSrc:      r.AudioSrc,
			TotalDuration: r.TotalDuration,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&journeyRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(ErrNotFound, "%q", id)
		}
		if err := tx.Where("journey_id = ?", id).Delete(&sectionRow{}).Error; err != nil {
			return err
		}
		return tx.Where("journey_id = ?", id).Delete(&itemRow{}).Error
	})
	return errors.Wrapf(err, "storage: delete %s", id)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toSectionRows(doc *journey.Document) []sectionRow {
	rows := make([]sectionRow, 0, len(doc.Sections))
	for i, sec := range doc.Sections {
		rows = append(rows, sectionRow{
			JourneyID:    doc.ID,
			Position:     i,
			SectionID:    sec.ID,
			Label:        sec.Label,
			Color:        sec.Color,
			StartTime:    sec.StartTime,
			EndTime:      sec.EndTime,
			Tempo:        string(sec.Tempo),
			Dynamics:     sec.Dynamics,
			Articulation: sec.Articulation,
			Movement:     sec.Movement,
			Weather:      sec.Weather,
			NightMode:    sec.NightMode,
			Scene:        sec.Scene,
			Sky:          sec.Sky,
			Ground:       sec.Ground,
		})
	}
	return rows
}

func toItemRows(doc *journey.Document) []itemRow {
	rows := make([]itemRow, 0, len(doc.Items))
	for i, it := range doc.Items {
		rows = append(rows, itemRow{
			JourneyID:      doc.ID,
			Position:       i,
			ItemID:         it.ID,
			Kind:           string(it.Kind),
			Content:        it.Content,
			Timestamp:      it.Timestamp,
			Duration:       it.Duration,
			X:              it.Position.X,
			Y:              it.Position.Y,
			PlacedAtOffset: it.PlacedAtOffset,
			EntryOffsetX:   it.EntryOffsetX,
			Scale:          it.Scale,
		})
	}
	return rows
}
