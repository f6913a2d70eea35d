package config

import (
	"github.com/tauraamui/camarchive/pkg/archive"
	"github.com/tauraamui/camarchive/pkg/camera"
	"github.com/tauraamui/camarchive/pkg/configdef"
	"github.com/tauraamui/camarchive/pkg/video/videofilter"
)

type defaultSettingKey uint

const (
	NUMPROCESSES    defaultSettingKey = 0x0
	RESULTSPATH     defaultSettingKey = 0x1
	DIFFPERCENTAGE  defaultSettingKey = 0x2
	INTERVALSECONDS defaultSettingKey = 0x3
	DURATIONSECONDS defaultSettingKey = 0x4
	CAMERAS         defaultSettingKey = 0x5
)

var defaultSettings = map[defaultSettingKey]interface{}{
	NUMPROCESSES:    archive.DefaultConcurrency,
	RESULTSPATH:     archive.DefaultOutputRoot,
	DIFFPERCENTAGE:  videofilter.DefaultThreshold,
	INTERVALSECONDS: 1.0,
	DURATIONSECONDS: 60.0,
	CAMERAS:         []camera.Record{},
}

func defaultValues() configdef.Values {
	return configdef.Values{
		NumProcesses:              defaultSettings[NUMPROCESSES].(int),
		ResultsPath:               defaultSettings[RESULTSPATH].(string),
		ImageDifferencePercentage: defaultSettings[DIFFPERCENTAGE].(videofilter.Threshold),
		IntervalSeconds:           defaultSettings[INTERVALSECONDS].(float64),
		DurationSeconds:           defaultSettings[DURATIONSECONDS].(float64),
		Cameras:                   defaultSettings[CAMERAS].([]camera.Record),
	}
}

// Defaults are the values written by create and assumed for any field a
// config file leaves out.
func Defaults() configdef.Values {
	return defaultValues()
}
