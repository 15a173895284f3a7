package seeders

import (
	"log"
	"time"

	"attendtrack_go/config"
	"attendtrack_go/database"
	"attendtrack_go/models"
	"attendtrack_go/utils"
)

// SeedDefaults ensures the records the application cannot run without.
// Currently that is just an active kiosk PIN.
func SeedDefaults() {
	SeedKioskPin()
}

// SeedKioskPin creates the initial kiosk PIN from configuration when no
// active PIN exists yet.
func SeedKioskPin() {
	var count int64
	database.DB.Model(&models.KioskPin{}).Where("active = ?", true).Count(&count)
	if count > 0 {
		return
	}

	hash, err := utils.HashPin(config.AppConfig.DefaultKioskPin)
	if err != nil {
		log.Printf("Error hashing default kiosk PIN: %v", err)
		return
	}
	if err := database.DB.Create(&models.KioskPin{PinHash: hash, Active: true}).Error; err != nil {
		log.Printf("Error seeding kiosk PIN: %v", err)
		return
	}
	log.Println("Kiosk PIN seeded from DEFAULT_KIOSK_PIN")
}

// SeedDemoData loads a small taxonomy and a few attendance records for
// local development. Guarded by the SEED_DEMO_DATA toggle.
func SeedDemoData() {
	seedDemoLevels()
	seedDemoTeachers()
	seedDemoAttendance()
}

func seedDemoLevels() {
	var count int64
	database.DB.Model(&models.Level{}).Count(&count)
	if count > 0 {
		log.Println("Levels already seeded, skipping...")
		return
	}

	levels := []struct {
		name     string
		sections []string
	}{
		{"Nursery", []string{"A", "B"}},
		{"Primary 1", []string{"A", "B", "C"}},
		{"Primary 2", []string{"A"}},
	}

	for _, l := range levels {
		level := models.Level{Name: l.name, NameKey: utils.NameKey(l.name)}
		for _, s := range l.sections {
			level.Sections = append(level.Sections, models.Section{
				Name:    s,
				NameKey: utils.NameKey(s),
			})
		}
		if err := database.DB.Create(&level).Error; err != nil {
			log.Printf("Error seeding level %s: %v", l.name, err)
		}
	}

	log.Println("Levels seeded successfully")
}

func seedDemoTeachers() {
	var count int64
	database.DB.Model(&models.Teacher{}).Count(&count)
	if count > 0 {
		log.Println("Teachers already seeded, skipping...")
		return
	}

	for _, name := range []string{"Priya Sharma", "Rahul Verma", "Anita Desai"} {
		teacher := models.Teacher{Name: utils.NormalizeTeacherName(name)}
		if err := database.DB.Create(&teacher).Error; err != nil {
			log.Printf("Error seeding teacher %s: %v", name, err)
		}
	}

	log.Println("Teachers seeded successfully")
}

func seedDemoAttendance() {
	var count int64
	database.DB.Model(&models.AttendanceRecord{}).Count(&count)
	if count > 0 {
		log.Println("Attendance already seeded, skipping...")
		return
	}

	var section models.Section
	if err := database.DB.First(&section).Error; err != nil {
		log.Printf("Skipping attendance seed, no sections: %v", err)
		return
	}
	var teacher models.Teacher
	if err := database.DB.First(&teacher).Error; err != nil {
		log.Printf("Skipping attendance seed, no teachers: %v", err)
		return
	}

	day := utils.TruncateToDay(time.Now().AddDate(0, 0, -1))
	record := models.AttendanceRecord{
		Date:      day,
		LevelID:   section.LevelID,
		SectionID: section.ID,
		Periods: []models.Period{
			{
				SequenceNumber: 1,
				TeacherID:      teacher.ID,
				TeacherName:    teacher.Name,
				CheckInTime:    day.Add(8 * time.Hour),
				CheckOutTime:   day.Add(9 * time.Hour),
			},
			{
				SequenceNumber: 2,
				TeacherID:      teacher.ID,
				TeacherName:    teacher.Name,
				CheckInTime:    day.Add(9 * time.Hour),
				CheckOutTime:   day.Add(10 * time.Hour),
			},
		},
	}
	if err := database.DB.Create(&record).Error; err != nil {
		log.Printf("Error seeding attendance: %v", err)
		return
	}

	log.Println("Attendance seeded successfully")
}
