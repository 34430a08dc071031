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

package scsi_test

import (
	"testing"

	"github.com/jetsetilly/gopherdrive/curated"
	"github.com/jetsetilly/gopherdrive/diskimage"
	"github.com/jetsetilly/gopherdrive/hardware/drive/scsi"
	"github.com/jetsetilly/gopherdrive/logger"
	"github.com/jetsetilly/gopherdrive/test"
)

func TestInitiator(t *testing.T) {
	tgt := scsi.NewTarget(logger.Allow, "TESTSCSI")
	tgt.MaxImageSize = 0
	img := diskimage.NewMemory(8 * scsi.BlockSize)
	test.DemandSuccess(t, tgt.Attach(scsi.Unit(1, 0), img))

	in := scsi.NewInitiator(tgt)

	test.ExpectSuccess(t, in.TestUnitReady(1, 0))
	err := in.TestUnitReady(2, 0)
	test.ExpectSuccess(t, curated.Is(err, scsi.CheckCondition))

	data, err := in.Inquiry(1, 0)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(data), 36)
	test.ExpectEquality(t, data[0], uint8(0x00))
	test.ExpectEquality(t, string(data[8:16]), "GOPHERDR")

	last, size, err := in.ReadCapacity(1, 0)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, last, uint32(7))
	test.ExpectEquality(t, size, uint32(scsi.BlockSize))

	out := pattern(5, 2*scsi.BlockSize)
	test.DemandSuccess(t, in.Write(1, 0, 3, out))
	data, err = in.Read(1, 0, 3, 2)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(data), string(out))

	// past the end of the image
	_, err = in.Read(1, 0, 8, 1)
	test.ExpectSuccess(t, curated.Is(err, scsi.CheckCondition))
	test.ExpectFailure(t, curated.Is(err, scsi.NoSelection))
}

func TestInitiatorSelection(t *testing.T) {
	tgt := scsi.NewTarget(logger.Allow, "TESTSCSI")
	in := scsi.NewInitiator(tgt)

	// the initiator ID cannot be selected
	_, _, err := in.Command(7, nil, 0x00, 0, 0, 0, 0, 0)
	test.ExpectSuccess(t, curated.Is(err, scsi.NoSelection))
	test.ExpectEquality(t, tgt.Phase(), scsi.BusFree)
}
