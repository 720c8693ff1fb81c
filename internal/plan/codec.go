// Package plan persists engine execution plans as UTF-8 text, split the
// way the engine consumes them: a base-data file holding one recorded
// base case per line, and a sync-data file holding the barrier indices,
// terminated by the EndSync sentinel.
package plan

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/stencil-engine/internal/engine"
	apperrors "github.com/stencil-engine/pkg/errors"
)

// Encode writes the base-data and sync-data streams for p.
//
// Base-data grammar, one record per line:
//
//	region_id t0 t1 x0[0..D-1] x1[0..D-1] dx0[0..D-1] dx1[0..D-1]
func Encode(p *engine.Plan, baseW, syncW io.Writer) error {
	bw := bufio.NewWriter(baseW)
	for _, r := range p.Base {
		fields := make([]string, 0, 3+4*p.Rank)
		fields = append(fields,
			strconv.Itoa(r.Region), strconv.Itoa(r.T0), strconv.Itoa(r.T1))
		for i := 0; i < p.Rank; i++ {
			fields = append(fields, strconv.Itoa(r.G.X0[i]))
		}
		for i := 0; i < p.Rank; i++ {
			fields = append(fields, strconv.Itoa(r.G.X1[i]))
		}
		for i := 0; i < p.Rank; i++ {
			fields = append(fields, strconv.Itoa(r.G.DX0[i]))
		}
		for i := 0; i < p.Rank; i++ {
			fields = append(fields, strconv.Itoa(r.G.DX1[i]))
		}
		if _, err := fmt.Fprintln(bw, strings.Join(fields, " ")); err != nil {
			return apperrors.Wrap(apperrors.CodeIoError, "write base data", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return apperrors.Wrap(apperrors.CodeIoError, "write base data", err)
	}

	sw := bufio.NewWriter(syncW)
	for _, s := range p.Sync {
		if _, err := fmt.Fprintln(sw, s); err != nil {
			return apperrors.Wrap(apperrors.CodeIoError, "write sync data", err)
		}
	}
	if _, err := fmt.Fprintln(sw, engine.EndSync); err != nil {
		return apperrors.Wrap(apperrors.CodeIoError, "write sync data", err)
	}
	if err := sw.Flush(); err != nil {
		return apperrors.Wrap(apperrors.CodeIoError, "write sync data", err)
	}
	return nil
}

// Decode reads a plan of the given rank back from the two streams and
// validates it.
func Decode(rank int, baseR, syncR io.Reader) (*engine.Plan, error) {
	p := &engine.Plan{Rank: rank}

	want := 3 + 4*rank
	bs := bufio.NewScanner(baseR)
	line := 0
	for bs.Scan() {
		line++
		text := strings.TrimSpace(bs.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != want {
			return nil, apperrors.Newf(apperrors.CodeBadPlan, "base data line %d: %d fields, want %d", line, len(fields), want)
		}
		vals := make([]int, want)
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.CodeBadPlan, fmt.Sprintf("base data line %d", line), err)
			}
			vals[i] = v
		}
		r := engine.PlanRecord{Region: vals[0], T0: vals[1], T1: vals[2]}
		for i := 0; i < rank; i++ {
			r.G.X0[i] = vals[3+i]
			r.G.X1[i] = vals[3+rank+i]
			r.G.DX0[i] = vals[3+2*rank+i]
			r.G.DX1[i] = vals[3+3*rank+i]
		}
		p.Base = append(p.Base, r)
	}
	if err := bs.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIoError, "read base data", err)
	}

	ss := bufio.NewScanner(syncR)
	terminated := false
	line = 0
	for ss.Scan() {
		line++
		text := strings.TrimSpace(ss.Text())
		if text == "" {
			continue
		}
		if terminated {
			return nil, apperrors.Newf(apperrors.CodeBadPlan, "sync data line %d: data past terminator", line)
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeBadPlan, fmt.Sprintf("sync data line %d", line), err)
		}
		if v == engine.EndSync {
			terminated = true
			continue
		}
		p.Sync = append(p.Sync, v)
	}
	if err := ss.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIoError, "read sync data", err)
	}
	if !terminated {
		return nil, apperrors.Wrap(apperrors.CodeBadPlan, "sync data missing terminator", nil)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes the plan to the two named files.
func Save(p *engine.Plan, baseFile, syncFile string) error {
	bf, err := os.Create(baseFile)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIoError, "create base data file", err)
	}
	defer bf.Close()
	sf, err := os.Create(syncFile)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIoError, "create sync data file", err)
	}
	defer sf.Close()
	return Encode(p, bf, sf)
}

// Load reads a plan of the given rank from the two named files.
func Load(rank int, baseFile, syncFile string) (*engine.Plan, error) {
	bf, err := os.Open(baseFile)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIoError, "open base data file", err)
	}
	defer bf.Close()
	sf, err := os.Open(syncFile)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIoError, "open sync data file", err)
	}
	defer sf.Close()
	return Decode(rank, bf, sf)
}
