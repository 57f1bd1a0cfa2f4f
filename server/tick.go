package server

import "time"

// StartTicker 启动房间的 Tick 循环（单线程推进世界）
func (r *Room) StartTicker() {
	r.tickerMu.Lock()
	defer r.tickerMu.Unlock()
	if r.tickerStarted {
		return
	}
	r.tickerStarted = true
	go func() {
		defer close(r.doneChan)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopChan:
				return
			case <-ticker.C:
				r.RunTick()
			}
		}
	}()
}

// RunTick 核心循环：处理输入 → 更新世界 → 广播结果
func (r *Room) RunTick() {
	start := time.Now()
	r.BeginTick() // 同一 Tick 时间线：重置输入计数等帧内状态
	r.ProcessInputs()
	advanced := r.UpdateWorld()
	r.updateStatus()
	r.Broadcast(advanced)
	r.metrics.AddTick(time.Since(start).Nanoseconds())
}

// Stop 停止 Tick 循环并断开所有玩家；之后房间不再推进
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
		r.tickerMu.Lock()
		started := r.tickerStarted
		r.tickerMu.Unlock()
		if started {
			<-r.doneChan // 等 Tick 协程退出后再动房间状态
		}
		for n := len(r.joinChan); n > 0; n-- {
			if req := <-r.joinChan; req.conn != nil {
				req.conn.Close()
			}
		}
		for id := range r.Players {
			r.LeavePlayer(id)
		}
	})
}
