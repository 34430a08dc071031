// This file is part of Gopherdrive.
//
// Gopherdrive is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gopherdrive is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gopherdrive.  If not, see <https://www.gnu.org/licenses/>.

//go:build statsview

package statsview

import (
	"fmt"
	"io"
	"sync"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/jetsetilly/gopherdrive/logger"
)

// Address of the stats server.
const Address = "localhost:12600"

// refresh interval of the graphs in milliseconds. drive emulation runs for
// a long time so there is no need for the default rate
const refresh = 2000

var launch sync.Once

// Launch the stats server in a new goroutine. The server is launched only
// once however many times the function is called.
func Launch(output io.Writer) {
	launch.Do(func() {
		viewer.SetConfiguration(viewer.WithAddr(Address), viewer.WithInterval(refresh))
		mgr := statsview.New()
		go func() {
			if err := mgr.Start(); err != nil {
				logger.Logf(logger.Allow, "statsview", "server stopped: %v", err)
			}
		}()
		fmt.Fprintf(output, "stats server available at %s/debug/statsview\n", Address)
	})
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return true
}
