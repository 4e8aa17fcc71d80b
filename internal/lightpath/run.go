package lightpath

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run loads the detector description, solves every configured path and
// prints the results. The entry point behind cmd/lightpath.
func Run(cfgPath string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	var provider Provider = NewMemProvider(cfg)
	if cfg.Database != "" {
		db, err := sql.Open("sqlite", cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		dp, err := NewDBProvider(db)
		if err != nil {
			return err
		}
		provider = dp
	}

	calc := NewCalculator()
	if err := calc.BeginOfRun(provider); err != nil {
		return err
	}
	calc.SetAVOffset(cfg.AVOffset)
	calc.SetELLIEReflect(cfg.ELLIEReflect)
	DebugLog("Calculator ready: Ra=%v Rb=%v", calc.AVInnerRadius(), calc.AVOuterRadius())

	start := time.Now()
	for i, req := range cfg.Paths {
		s := Vector3{req.Start[0], req.Start[1], req.Start[2]}
		e := Vector3{req.End[0], req.End[1], req.End[2]}
		var p Path
		if req.Partial {
			p = calc.CalcByPositionPartial(s, e, req.Energy, req.Tolerance)
		} else {
			p = calc.CalcByPosition(s, e, req.Energy, req.Tolerance)
		}
		fmt.Printf("path #%d: type=%s straight=%v tir=%v resv=%v loops=%d\n",
			i, p.Type, p.StraightLine, p.IsTIR, p.ResvHit, p.FinalLoop)
		fmt.Printf("  dist: innerAV=%.3f av=%.3f water=%.3f upper=%.3f lower=%.3f\n",
			p.DistInInnerAV, p.DistInAV, p.DistInWater, p.DistInUpperTarget, p.DistInLowerTarget)
		if p.XAVNeck {
			fmt.Printf("  neck: innerAV=%.3f av=%.3f water=%.3f\n",
				p.DistInNeckInnerAV, p.DistInNeckAV, p.DistInNeckWater)
		}
		if req.PMTNormal != nil {
			n := Vector3{req.PMTNormal[0], req.PMTNormal[1], req.PMTNormal[2]}
			points := req.SolidAnglePoints
			if points == 0 {
				points = 8
			}
			sa, ca := calc.CalculateSolidAngle(n, points)
			T, R := calc.CalculateFresnelTRCoeff()
			fmt.Printf("  pmt: solidAngle=%.6g cosThetaAvg=%.4f fresnelT=%.4f fresnelR=%.4f\n",
				sa, ca, T, R)
		}
	}
	DebugLog("Paths: %d, time: %s", len(cfg.Paths), time.Since(start))

	if Debug {
		StepStats()
	}
	return nil
}
