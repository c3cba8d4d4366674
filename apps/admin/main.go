package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tuitioncenter/core"
	"github.com/trezcool/tuitioncenter/core/staff"
	"github.com/trezcool/tuitioncenter/core/subject"
	"github.com/trezcool/tuitioncenter/storage/database"
	"github.com/trezcool/tuitioncenter/storage/database/gormdb"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	gdb, err := gormdb.NewGormDB(db, conf.Debug)
	errAndDie(err)
	staffRepo := gormdb.NewStaffRepository(gdb)

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:         db,
		validate:   validate,
		staffSvc:   staff.NewService(staffRepo),
		subjectSvc: subject.NewService(gormdb.NewSubjectRepository(gdb), staffRepo),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
