package services

import (
	"errors"

	"attendtrack_go/apperrors"
	"attendtrack_go/models"
	"attendtrack_go/utils"

	"gorm.io/gorm"
)

// TaxonomyService owns the Level -> Section -> Teacher taxonomy. All
// mutations are atomic: either the full requested change set commits or
// none of it does.
type TaxonomyService struct {
	DB *gorm.DB
}

func NewTaxonomyService(db *gorm.DB) *TaxonomyService {
	return &TaxonomyService{DB: db}
}

// GetLevels returns all levels with their sections, insertion order.
func (s *TaxonomyService) GetLevels() ([]models.Level, error) {
	var levels []models.Level
	if err := s.DB.Preload("Sections").Order("id asc").Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// GetLevel returns one level with sections.
func (s *TaxonomyService) GetLevel(levelID uint) (*models.Level, error) {
	var level models.Level
	if err := s.DB.Preload("Sections").First(&level, levelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("level", levelID)
		}
		return nil, err
	}
	return &level, nil
}

// CreateLevel creates a level together with its initial sections. The level
// name is checked case-insensitively against all levels, each section name
// against its siblings within the new level.
func (s *TaxonomyService) CreateLevel(name string, sectionNames []string) (*models.Level, error) {
	name = utils.SanitizeString(name)
	if name == "" {
		return nil, apperrors.NewValidation("level", "name must not be empty")
	}
	sectionNames = utils.CleanNames(sectionNames)

	var created models.Level
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Level{}).Where("name_key = ?", utils.NameKey(name)).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewDuplicateName("level", name)
		}
		if dups := utils.DuplicateKeys(nil, sectionNames); len(dups) > 0 {
			return apperrors.NewDuplicateName("section", dups...)
		}

		created = models.Level{Name: name, NameKey: utils.NameKey(name)}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}
		for _, sn := range sectionNames {
			section := models.Section{LevelID: created.ID, Name: sn, NameKey: utils.NameKey(sn)}
			if err := tx.Create(&section).Error; err != nil {
				return err
			}
			created.Sections = append(created.Sections, section)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// RenameLevel changes a level's name, keeping uniqueness across levels.
func (s *TaxonomyService) RenameLevel(levelID uint, newName string) (*models.Level, error) {
	newName = utils.SanitizeString(newName)
	if newName == "" {
		return nil, apperrors.NewValidation("level", "name must not be empty")
	}

	var level models.Level
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Sections").First(&level, levelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("level", levelID)
			}
			return err
		}
		var count int64
		if err := tx.Model(&models.Level{}).
			Where("name_key = ? AND id <> ?", utils.NameKey(newName), levelID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewDuplicateName("level", newName)
		}
		level.Name = newName
		level.NameKey = utils.NameKey(newName)
		return tx.Model(&models.Level{}).Where("id = ?", levelID).
			Updates(map[string]interface{}{"name": level.Name, "name_key": level.NameKey}).Error
	})
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// AddSections adds sections to an existing level. The call is atomic: if
// any requested name collides with an existing section of the level (or
// with another requested name), nothing is added and the error lists every
// colliding name.
func (s *TaxonomyService) AddSections(levelID uint, names []string) (*models.Level, error) {
	names = utils.CleanNames(names)
	if len(names) == 0 {
		return nil, apperrors.NewValidation("sections", "at least one section name is required")
	}

	var level models.Level
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Sections").First(&level, levelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("level", levelID)
			}
			return err
		}

		existing := make(map[string]bool, len(level.Sections))
		for _, sec := range level.Sections {
			existing[sec.NameKey] = true
		}
		if dups := utils.DuplicateKeys(existing, names); len(dups) > 0 {
			return apperrors.NewDuplicateName("section", dups...)
		}

		for _, n := range names {
			section := models.Section{LevelID: level.ID, Name: n, NameKey: utils.NameKey(n)}
			if err := tx.Create(&section).Error; err != nil {
				return err
			}
			level.Sections = append(level.Sections, section)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// DeleteSection removes a section permanently. Deletion is blocked while
// attendance history still references it. The delete is unscoped so the
// name is immediately reusable under the unique index.
func (s *TaxonomyService) DeleteSection(sectionID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var section models.Section
		if err := tx.First(&section, sectionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("section", sectionID)
			}
			return err
		}
		var refs int64
		if err := tx.Model(&models.AttendanceRecord{}).Where("section_id = ?", sectionID).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.NewConflict("section", "attendance records reference this section")
		}
		return tx.Unscoped().Delete(&section).Error
	})
}

// DeleteLevel removes a level and all its sections permanently. Blocked
// while attendance history references the level. Unscoped, so the level
// name can be recreated right away.
func (s *TaxonomyService) DeleteLevel(levelID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var level models.Level
		if err := tx.First(&level, levelID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("level", levelID)
			}
			return err
		}
		var refs int64
		if err := tx.Model(&models.AttendanceRecord{}).Where("level_id = ?", levelID).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return apperrors.NewConflict("level", "attendance records reference this level")
		}
		if err := tx.Unscoped().Where("level_id = ?", levelID).Delete(&models.Section{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&level).Error
	})
}

// GetTeachers returns all teachers in insertion order.
func (s *TaxonomyService) GetTeachers() ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := s.DB.Order("id asc").Find(&teachers).Error; err != nil {
		return nil, err
	}
	return teachers, nil
}

// CreateTeacher creates a teacher. Names are stored normalized upper-case
// and compared case-insensitively, so "Jane Doe" and "jane doe" collide.
func (s *TaxonomyService) CreateTeacher(name string) (*models.Teacher, error) {
	normalized := utils.NormalizeTeacherName(name)
	if normalized == "" {
		return nil, apperrors.NewValidation("teacherName", "name must not be empty")
	}

	var created models.Teacher
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Teacher{}).Where("name = ?", normalized).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewDuplicateName("teacher", name)
		}
		created = models.Teacher{Name: normalized}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// RenameTeacher changes a teacher's stored name, keeping global uniqueness.
func (s *TaxonomyService) RenameTeacher(teacherID uint, newName string) (*models.Teacher, error) {
	normalized := utils.NormalizeTeacherName(newName)
	if normalized == "" {
		return nil, apperrors.NewValidation("teacherName", "name must not be empty")
	}

	var teacher models.Teacher
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&teacher, teacherID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("teacher", teacherID)
			}
			return err
		}
		var count int64
		if err := tx.Model(&models.Teacher{}).
			Where("name = ? AND id <> ?", normalized, teacherID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.NewDuplicateName("teacher", newName)
		}
		teacher.Name = normalized
		return tx.Model(&models.Teacher{}).Where("id = ?", teacherID).Update("name", normalized).Error
	})
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

// DeleteTeacher removes a teacher permanently, freeing the name for
// re-registration. Historical periods keep their denormalized teacher
// label, so no cascade happens.
func (s *TaxonomyService) DeleteTeacher(teacherID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var teacher models.Teacher
		if err := tx.First(&teacher, teacherID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NewNotFound("teacher", teacherID)
			}
			return err
		}
		return tx.Unscoped().Delete(&teacher).Error
	})
}
