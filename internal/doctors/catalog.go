package doctors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrEmptyCatalog is returned when a seed file contains no doctors.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrMissingID is returned when a doctor has a blank id.
	ErrMissingID = errors.New("doctor id is required")

	// ErrDuplicateID is returned when two doctors share an id.
	ErrDuplicateID = errors.New("duplicate doctor id")

	// ErrInvalidRating is returned for ratings outside [0,5].
	ErrInvalidRating = errors.New("rating must be between 0 and 5")

	// ErrInvalidExperience is returned for negative experience.
	ErrInvalidExperience = errors.New("experience must not be negative")

	// ErrInvalidDate is returned for availability keys that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("availability date must be YYYY-MM-DD")
)

// LoadCatalog reads a JSON array of doctors from path. An empty path returns
// DefaultCatalog.
func LoadCatalog(path string) ([]Doctor, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("doctors: read seed file: %w", err)
	}

	var list []Doctor
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("doctors: decode seed file: %w", err)
	}
	if err := ValidateCatalog(list); err != nil {
		return nil, err
	}
	return list, nil
}

// ValidateCatalog checks the seeded data once at startup.
func ValidateCatalog(list []Doctor) error {
	if len(list) == 0 {
		return fmt.Errorf("doctors: %w", ErrEmptyCatalog)
	}
	seen := make(map[string]struct{}, len(list))
	for i, d := range list {
		if strings.TrimSpace(d.ID) == "" {
			return fmt.Errorf("doctors: entry %d: %w", i, ErrMissingID)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("doctors: %s: %w", d.ID, ErrDuplicateID)
		}
		seen[d.ID] = struct{}{}

		if d.Rating < 0 || d.Rating > 5 {
			return fmt.Errorf("doctors: %s: %w", d.ID, ErrInvalidRating)
		}
		if d.Experience < 0 {
			return fmt.Errorf("doctors: %s: %w", d.ID, ErrInvalidExperience)
		}
		for date := range d.Availability {
			if _, err := ParseDate(date); err != nil {
				return fmt.Errorf("doctors: %s: %q: %w", d.ID, date, ErrInvalidDate)
			}
		}
	}
	return nil
}

// DefaultCatalog returns the built-in seed list. Each call returns fresh maps
// so callers cannot alias another caller's data.
func DefaultCatalog() []Doctor {
	return []Doctor{
		{
			ID:             "1",
			Name:           "Dr. Sarah Johnson",
			Specialization: "Cardiologist",
			Image:          "https://images.pexels.com/photos/5215024/pexels-photo-5215024.jpeg?auto=compress&cs=tinysrgb&w=400",
			Rating:         4.9,
			Experience:     15,
			Education:      "MD from Harvard Medical School, Residency at Johns Hopkins",
			Location:       "New York Medical Center",
			About:          "Dr. Johnson specializes in preventive cardiology and heart failure management, with a focus on lifestyle changes that keep patients out of the hospital.",
			IsAvailable:    true,
			Availability: Availability{
				"2024-03-10": {"9:00 AM", "10:00 AM", "2:00 PM", "3:00 PM"},
				"2024-03-11": {"9:00 AM", "11:00 AM", "1:00 PM"},
				"2024-03-12": {"10:00 AM", "2:00 PM", "4:00 PM"},
			},
		},
		{
			ID:             "2",
			Name:           "Dr. Michael Chen",
			Specialization: "Dermatologist",
			Image:          "https://images.pexels.com/photos/5327585/pexels-photo-5327585.jpeg?auto=compress&cs=tinysrgb&w=400",
			Rating:         4.8,
			Experience:     12,
			Education:      "MD from Stanford University, Dermatology Residency at UCSF",
			Location:       "Downtown Skin Clinic",
			About:          "Dr. Chen treats acne, eczema and psoriasis and runs the clinic's skin cancer screening program.",
			IsAvailable:    true,
			Availability: Availability{
				"2024-03-10": {"8:00 AM", "9:00 AM", "1:00 PM"},
				"2024-03-13": {"10:00 AM", "11:00 AM", "3:00 PM", "4:00 PM"},
			},
		},
		{
			ID:             "3",
			Name:           "Dr. Emily Rodriguez",
			Specialization: "Pediatrician",
			Image:          "https://images.pexels.com/photos/5452201/pexels-photo-5452201.jpeg?auto=compress&cs=tinysrgb&w=400",
			Rating:         4.9,
			Experience:     10,
			Education:      "MD from Columbia University, Pediatrics Residency at Children's Hospital of Philadelphia",
			Location:       "Children's Wellness Center",
			About:          "Dr. Rodriguez cares for children from newborns to teenagers, with particular interest in developmental screening and asthma care.",
			IsAvailable:    true,
			Availability: Availability{
				"2024-03-11": {"9:00 AM", "10:00 AM", "11:00 AM"},
				"2024-03-12": {"1:00 PM", "2:00 PM", "3:00 PM"},
				"2024-03-14": {"9:00 AM", "10:00 AM"},
			},
		},
		{
			ID:             "4",
			Name:           "Dr. James Wilson",
			Specialization: "Orthopedic Surgeon",
			Image:          "https://images.pexels.com/photos/6129507/pexels-photo-6129507.jpeg?auto=compress&cs=tinysrgb&w=400",
			Rating:         4.7,
			Experience:     20,
			Education:      "MD from Yale School of Medicine, Orthopedic Surgery Residency at Mayo Clinic",
			Location:       "Sports Medicine Institute",
			About:          "Dr. Wilson focuses on sports injuries and joint replacement, and favors conservative treatment before surgery.",
			IsAvailable:    false,
			Availability:   Availability{},
		},
		{
			ID:             "5",
			Name:           "Dr. Priya Patel",
			Specialization: "Neurologist",
			Image:          "https://images.pexels.com/photos/5407206/pexels-photo-5407206.jpeg?auto=compress&cs=tinysrgb&w=400",
			Rating:         4.8,
			Experience:     14,
			Education:      "MD from Johns Hopkins University, Neurology Residency at Massachusetts General Hospital",
			Location:       "Brooklyn Neuroscience Center",
			About:          "Dr. Patel treats migraine, epilepsy and sleep disorders and leads the center's headache clinic.",
			IsAvailable:    true,
			Availability: Availability{
				"2024-03-12": {"9:00 AM", "11:00 AM"},
				"2024-03-15": {"10:00 AM", "1:00 PM", "3:00 PM"},
			},
		},
		{
			ID:             "6",
			Name:           "Dr. Robert Kim",
			Specialization: "Family Medicine",
			Image:          "https://images.pexels.com/photos/5215017/pexels-photo-5215017.jpeg?auto=compress&cs=tinysrgb&w=400",
			Rating:         4.6,
			Experience:     8,
			Education:      "MD from University of Michigan, Family Medicine Residency at UCLA",
			Location:       "Queens Community Health",
			About:          "Dr. Kim provides primary care for the whole family, from annual physicals to chronic disease management.",
			IsAvailable:    true,
			Availability: Availability{
				"2024-03-10": {"8:00 AM", "12:00 PM", "5:00 PM"},
				"2024-03-11": {"8:00 AM", "12:00 PM"},
			},
		},
	}
}
