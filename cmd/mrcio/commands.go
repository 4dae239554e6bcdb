package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"mrcio/internal/logging"
	"mrcio/internal/models"
	"mrcio/pkg/config"
	"mrcio/pkg/mrc"
	"mrcio/pkg/visualization"
	"mrcio/pkg/window"
)

type headerReport struct {
	File     string        `yaml:"file"`
	Size     string        `yaml:"size"`
	Metadata *mrc.Metadata `yaml:"metadata"`
}

func runHeader(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("header needs at least one file")
	}
	enc := yaml.NewEncoder(os.Stdout)
	defer enc.Close()
	for _, path := range args {
		fi, err := os.Stat(path)
		if err != nil {
			return err
		}
		m, err := mrc.ReadMetadataFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		report := headerReport{File: path, Size: humanize.Bytes(uint64(fi.Size())), Metadata: m}
		if err := enc.Encode(&report); err != nil {
			return err
		}
	}
	return nil
}

// loadVolume reads every image of path into one volume.
func loadVolume(path string) (*models.Volume, error) {
	m, err := mrc.ReadMetadataFile(path)
	if err != nil {
		return nil, err
	}
	if m.Layout != mrc.ImageStack.String() {
		a, err := mrc.ReadImageFile(path, mrc.NoIndex)
		if err != nil {
			return nil, err
		}
		return models.NewVolume(a, m.Apix)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	seq, err := mrc.IterImages(f)
	if err != nil {
		return nil, err
	}
	images := make([]*mrc.Array, 0, m.Count)
	for img, err := range seq {
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return models.NewStackVolume(images, m.Apix)
}

func runSlices(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("slices", flag.ContinueOnError)
	axis := fs.String("axis", "", "Axis to slice along (x, y or z); all axes when empty")
	outDir := fs.String("out", cfg.Export.SlicesDir, "Directory to save extracted slices")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("slices needs exactly one input file")
	}

	vol, err := loadVolume(fs.Arg(0))
	if err != nil {
		return err
	}
	logging.Infof("Loaded %dx%dx%d volume from %s", vol.Width, vol.Height, vol.Depth, fs.Arg(0))

	viewer := visualization.NewViewer(vol)
	viewer.Quality = cfg.Export.JPEGQuality

	axes := []string{"x", "y", "z"}
	if *axis != "" {
		axes = []string{*axis}
	}
	for _, a := range axes {
		axisDir := filepath.Join(*outDir, a)
		n, err := viewer.SaveSliceSequence(a, axisDir)
		if err != nil {
			return fmt.Errorf("%s-axis slices: %w", a, err)
		}
		logging.Infof("Saved %d %s-axis slices to %s", n, a, axisDir)
	}
	return nil
}

// stackName numbers output for the id-th stack: stack.mrc becomes
// stack_001.mrc.
func stackName(output string, id int) string {
	ext := filepath.Ext(output)
	return fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(output, ext), id, ext)
}

// stackSession writes images into numbered stacks of at most max images
// and records where each image came from in a selection file.
type stackSession struct {
	output string
	max    int
	opts   []mrc.WriteOption

	id       int
	file     *os.File
	writer   *mrc.StackWriter
	sel      []string
	written  int
	finished []string
}

func (s *stackSession) add(img *mrc.Array, source string, index int) error {
	if s.writer == nil {
		s.id++
		name := stackName(s.output, s.id)
		f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		s.file, s.writer = f, mrc.NewStackWriter(f, s.opts...)
	}
	if err := s.writer.Append(img); err != nil {
		return fmt.Errorf("%s image %d: %w", source, index, err)
	}
	s.sel = append(s.sel, fmt.Sprintf("%d %s %d", s.writer.Len(), source, index))
	s.written++
	if s.writer.Len() == s.max {
		return s.flush()
	}
	return nil
}

func (s *stackSession) flush() error {
	if s.writer == nil {
		return nil
	}
	name := s.file.Name()
	err := s.file.Close()
	if err == nil {
		selName := filepath.Join(filepath.Dir(name), "sel_"+strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))+".txt")
		err = os.WriteFile(selName, []byte(strings.Join(s.sel, "\n")+"\n"), 0644)
	}
	logging.Debugf("closed %s with %d images", name, s.writer.Len())
	s.finished = append(s.finished, name)
	s.file, s.writer, s.sel = nil, nil, nil
	return err
}

func runStack(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("stack", flag.ContinueOnError)
	output := fs.String("output", "", "Output stack filename; stacks are numbered")
	maxImages := fs.Int("max", 500, "Maximum number of images per stack")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" || fs.NArg() == 0 {
		return errors.New("stack needs -output and at least one input file")
	}
	if !mrc.IsWritable(*output) {
		return fmt.Errorf("cannot write %s: extension must be mrc, ccp4 or map", *output)
	}
	if *maxImages <= 0 {
		return fmt.Errorf("-max must be positive, got %d", *maxImages)
	}

	s := &stackSession{output: *output, max: *maxImages, opts: cfg.WriteOptions()}
	for _, path := range fs.Args() {
		if err := s.addFile(path); err != nil {
			if ferr := s.flush(); ferr != nil {
				logging.Warningf("closing partial stack: %v", ferr)
			}
			return err
		}
	}
	if err := s.flush(); err != nil {
		return err
	}
	logging.Infof("Wrote %d images to %d stacks", s.written, len(s.finished))
	return nil
}

func (s *stackSession) addFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	volume, err := mrc.IsVolume(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if volume {
		logging.Warningf("%s is a volume; stacking its sections", path)
	}
	seq, err := mrc.IterImages(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	i := 0
	for img, err := range seq {
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := s.add(img, path, i); err != nil {
			return err
		}
		i++
	}
	return nil
}

// coordinateList collects repeated -at x,y flags.
type coordinateList []window.Coordinate

func (c *coordinateList) String() string {
	parts := make([]string, len(*c))
	for i, v := range *c {
		parts[i] = v.String()
	}
	return strings.Join(parts, " ")
}

func (c *coordinateList) Set(value string) error {
	xs, ys, ok := strings.Cut(value, ",")
	if !ok {
		return fmt.Errorf("coordinate %q is not x,y", value)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return fmt.Errorf("coordinate %q: %w", value, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return fmt.Errorf("coordinate %q: %w", value, err)
	}
	*c = append(*c, window.Coordinate{X: x, Y: y})
	return nil
}

func runWindow(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("window", flag.ContinueOnError)
	var coords coordinateList
	fs.Var(&coords, "at", "Window center as x,y (repeatable)")
	size := fs.Int("size", 64, "Window edge length in pixels")
	output := fs.String("output", "", "Output window stack")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" || fs.NArg() != 1 || len(coords) == 0 {
		return errors.New("window needs -output, at least one -at and one input file")
	}
	if !mrc.IsWritable(*output) {
		return fmt.Errorf("cannot write %s: extension must be mrc, ccp4 or map", *output)
	}

	path := fs.Arg(0)
	m, err := mrc.ReadMetadataFile(path)
	if err != nil {
		return err
	}
	if m.Layout != mrc.SingleImage.String() {
		logging.Warningf("%s is a %s; windowing its first image", path, m.Layout)
	}
	img, err := mrc.ReadImageFile(path, 0)
	if err != nil {
		return err
	}
	wins, err := window.Extract(img, coords, *size)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(*output, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	opts := append(cfg.WriteOptions(), mrc.WithPixelSize(m.Apix))
	sw := mrc.NewStackWriter(f, opts...)
	for _, w := range wins {
		if err := sw.Append(w); err != nil {
			return err
		}
	}
	logging.Infof("Wrote %d windows of %d pixels to %s", sw.Len(), *size, *output)
	return f.Close()
}
