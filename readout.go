package partials

// SpeedOfSound in air, in m/s.
const SpeedOfSound = 343.0

// Readout holds the physical quantities shown next to a played note.
type Readout struct {
	Frequency      float64 // Hz
	Wavelength     float64 // m
	Period         float64 // ms
	HarmonicsCount int
}

// Wavelength in metres of a sound wave of frequency f in air.
func Wavelength(f float64) float64 { return SpeedOfSound / f }

// Period in milliseconds of a wave of frequency f.
func Period(f float64) float64 { return 1000 / f }

func NewReadout(f float64, profile InstrumentProfile) (Readout, error) {
	if err := CheckFrequency(f); err != nil {
		return Readout{}, err
	}
	return Readout{
		Frequency:      f,
		Wavelength:     Wavelength(f),
		Period:         Period(f),
		HarmonicsCount: profile.HarmonicsCount(),
	}, nil
}
