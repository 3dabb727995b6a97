package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/phil-mansfield/gopbd/io"
)

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil { log.Fatal(err.Error()) }
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil { log.Fatal(err.Error()) }
	}
}

var examples = map[string]string{
	"Run":        io.ExampleRunFile,
	"Cloth":      io.ExampleClothFile,
	"Deformable": io.ExampleDeformableFile,
	"Rigid":      io.ExampleRigidFile,
	"Fluid":      io.ExampleFluidFile,
}

var exampleNames = []string{"Run", "Cloth", "Deformable", "Rigid", "Fluid"}

func main() {
	var (
		run, exampleConfig string
	)
	vars := map[string]*string{
		"Run":           &run,
		"ExampleConfig": &exampleConfig,
	}

	flag.StringVar(
		&run, "Run", "",
		"Scene file containing a [Run] section and at least one body section.",
	)
	flag.StringVar(
		&exampleConfig,
		"ExampleConfig", "", "Prints an example configuration file of the "+
			"specified type to stdout. Accepted arguments are "+
			quotedList(exampleNames)+".",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil { log.Fatal(err.Error()) }

	switch modeName {
	case "Run":
		wrap, err := io.ReadSceneConfig(run)
		if err != nil { log.Fatal(err.Error()) }
		runMain(wrap)
	case "ExampleConfig":
		example, ok := examples[exampleConfig]
		if !ok {
			log.Fatalf(
				"Unrecognized 'ExampleConfig' argument. Only recognized "+
					"arguments are %s.", quotedList(exampleNames),
			)
		}
		fmt.Println(example)
	default:
		panic("Impossible")
	}
}

func quotedList(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names { quoted[i] = "'" + name + "'" }
	return strings.Join(quoted, ", ")
}

func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" { setNames = append(setNames, name) }
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but gopbd "+
				"only accepts one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func setupIO(con *io.RunConfig) *FileGroup {
	fg := &FileGroup{}

	var err error
	if con.ValidLogFile() {
		fg.log, err = os.Create(con.LogFile)
		if err != nil { log.Fatal(err.Error()) }
		log.SetOutput(fg.log)
	}

	if con.ValidProfileFile() {
		fg.prof, err = os.Create(con.ProfileFile)
		if err != nil { log.Fatal(err.Error()) }
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil { log.Fatal(err.Error()) }
	}

	if con.ValidOutput() {
		err = os.MkdirAll(con.Output, 0755)
		if err != nil { log.Fatal(err.Error()) }
	}

	return fg
}

func runMain(wrap *io.SceneWrapper) {
	con := &wrap.Run
	fg := setupIO(con)
	defer fg.Close()

	sc, err := io.NewScene(wrap)
	if err != nil { log.Fatal(err.Error()) }

	log.Printf("Running %d steps of %g s over %d particles.",
		con.Steps, con.TimeStep, sc.NumParticles())
	for i, name := range sc.Names {
		log.Printf("  %s: %d particles, %d constraints", name,
			sc.Bodies[i].NumParticles(), sc.Bodies[i].NumConstraints())
	}

	writeFrame(con, sc)
	start := time.Now()
	for step := 1; step <= con.Steps; step++ {
		sc.Step()
		writeFrame(con, sc)

		if step%con.LogEvery == 0 || step == con.Steps {
			sum := io.Summarize(sc.Frame().Velocities)
			log.Printf(
				"Step %d/%d (t = %.3f s): %d contacts, mean speed %.3g, "+
					"max speed %.3g, energy %.3g, %.1f steps/s",
				step, con.Steps, sc.Time(), sc.Contacts(), sum.Mean, sum.Max,
				sum.Energy, float64(step)/time.Since(start).Seconds(),
			)
		}
	}
}

func writeFrame(con *io.RunConfig, sc *io.Scene) {
	if !con.WritesFrame(sc.Steps()) { return }
	file := io.FrameName(con.Output, sc.Steps())
	if err := io.WriteFrameFile(file, sc.Frame()); err != nil {
		log.Fatal(err.Error())
	}
}
