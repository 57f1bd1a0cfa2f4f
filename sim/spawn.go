package sim

// spawnTraffic 本帧的车流生成试验：先普通车，再敌方车辆
func (w *World) spawnTraffic() {
	if chance(w.rng, w.cfg.CarSpawnProbability) {
		w.vehicles = append(w.vehicles, w.newRoadVehicle(KindCar, w.cfg.Car))
	}
	if chance(w.rng, w.cfg.EnemySpawnProbability) {
		w.vehicles = append(w.vehicles, w.newRoadVehicle(KindEnemyCar, w.cfg.EnemyCar))
	}
}

// newRoadVehicle 在屏幕上方或下方的随机车道生成，速度随机
func (w *World) newRoadVehicle(kind Kind, spec VehicleSpec) *Vehicle {
	y := pick(w.rng, w.cfg.CarSpawnY, -50)
	x := pick(w.rng, w.cfg.LaneCenters, w.cfg.WindowWidth/2)
	speed := w.rollSpeed()
	v := newTraffic(w.allocID(), kind, x, y, speed, spec)
	w.log.Debugw("vehicle spawned", "frame", w.frame, "kind", kind, "id", v.ID, "x", x, "y", y, "speed", speed)
	return v
}

func (w *World) rollSpeed() int {
	return rangeInt(w.rng, w.cfg.CarSpeedMin, w.cfg.CarSpeedMax)
}

// maybeShoot 每辆未摧毁的敌方车辆独立进行一次发射试验
func (w *World) maybeShoot(v *Vehicle) {
	if v.Kind != KindEnemyCar || v.Destroyed {
		return
	}
	if !chance(w.rng, w.cfg.FireballSpawnProbability) {
		return
	}
	fb := newFireball(w.allocID(), v, w.cfg.FireballRadius, w.cfg.FireballAttack, w.cfg.FireballSpeedY)
	v.fireballs = append(v.fireballs, fb)
}

// respawnPosition 出租车重生位置
func (w *World) respawnPosition() (int, int) {
	x := pick(w.rng, w.cfg.RespawnLanes, w.cfg.WindowWidth/2)
	y := rangeInt(w.rng, w.cfg.RespawnMinY, w.cfg.RespawnMaxY)
	return x, y
}
