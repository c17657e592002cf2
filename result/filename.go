package result

import (
	"fmt"
	"strconv"
	"time"

	"github.com/UnipvPhysicsLectures/EmuS4Tutorials/entity"
)

// Filename builds the output file name
//
//	<engine>_<sweepKind>_<shape>_px<px>_py<py>_r<r>_h<h>_<DDMMYY_HHMMSS>.<ext>
//
// encoding the engine, the key geometry parameters and the creation time.
// Uniqueness rests on the wall-clock second alone: two runs started within
// the same second produce the same name and the second overwrites the first.
func Filename(engineName, sweepKind string, geo entity.Geometry, t time.Time, ext string) string {
	return fmt.Sprintf("%s_%s_%s_px%s_py%s_r%s_h%s_%s.%s",
		engineName, sweepKind, geo.Shape,
		num(geo.PeriodX), num(geo.PeriodY), num(geo.Radius), num(geo.Height),
		t.Format("020106_150405"), ext)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
