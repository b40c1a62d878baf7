package testbed

import (
	"fmt"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/math"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
	"github.com/spaghettifunk/prism/engine/systems"
)

type TestGame struct {
	*engine.Game
}

type sceneObject struct {
	name      string
	transform *math.Transform
	material  metadata.MaterialHandle
	overrides *metadata.PropertySet
	rotates   bool
}

type gameState struct {
	width  uint32
	height uint32
	time   float32

	cube       *metadata.Geometry
	crate      metadata.MaterialHandle
	lightSrc   metadata.MaterialHandle
	objects    []*sceneObject
	lights     []metadata.Light
	ambient    metadata.AmbientLight
	lightColor math.Vec3
	// Index of the flashlight in lights.
	flashlight int
}

var cubePositions = []math.Vec3{
	math.NewVec3(0.0, 0.0, 0.0),
	math.NewVec3(2.0, 5.0, -15.0),
	math.NewVec3(-1.5, -2.2, -2.5),
	math.NewVec3(-3.8, -2.0, -12.3),
	math.NewVec3(2.4, -0.4, -3.5),
	math.NewVec3(-1.7, 3.0, -7.5),
	math.NewVec3(1.3, -2.0, -2.5),
	math.NewVec3(1.5, 2.0, -2.5),
	math.NewVec3(1.5, 0.2, -1.5),
	math.NewVec3(-1.3, 1.0, -1.5),
}

var pointLightPositions = []math.Vec3{
	math.NewVec3(0.7, 0.2, 2.0),
	math.NewVec3(2.3, 10.3, -4.0),
	math.NewVec3(-4.0, 2.0, -12.0),
	math.NewVec3(0.0, 0.0, -3.0),
}

func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				lightColor: math.NewVec3One(),
				ambient:    metadata.AmbientLight{Color: math.NewVec3One(), Intensity: 0.05},
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame.Initialize() called!")
	state := g.State.(*gameState)
	sm := g.SystemManager

	cube, err := sm.GeometrySystem.Create(systems.GenerateCubeConfig(1.0, 1.0, 1.0, 1.0, 1.0, "cube"))
	if err != nil {
		return err
	}
	state.cube = cube

	if state.crate, err = sm.MaterialSystem.Acquire("crate"); err != nil {
		return err
	}
	if state.lightSrc, err = sm.MaterialSystem.Acquire("light_source"); err != nil {
		return err
	}

	for i, position := range cubePositions {
		state.objects = append(state.objects, &sceneObject{
			name:      fmt.Sprintf("cube_%d", i),
			transform: math.TransformFromPosition(position),
			material:  state.crate,
			rotates:   true,
		})
	}

	// The floor shares the crate material and only overrides isFloor.
	floorOverrides := metadata.NewPropertySet()
	floorOverrides.SetBool("isFloor", true)
	state.objects = append(state.objects, &sceneObject{
		name:      "floor",
		transform: math.TransformFromPositionRotationScale(math.NewVec3(0, -3, 0), math.NewQuatIdentity(), math.NewVec3(50, 0.1, 50)),
		material:  state.crate,
		overrides: floorOverrides,
	})

	for i, position := range pointLightPositions {
		state.objects = append(state.objects, &sceneObject{
			name:      fmt.Sprintf("lamp_%d", i),
			transform: math.TransformFromPositionRotationScale(position, math.NewQuatIdentity(), math.NewVec3(0.2, 0.2, 0.2)),
			material:  state.lightSrc,
		})
		state.lights = append(state.lights, metadata.NewPointLight(position))
	}

	sun := metadata.NewDirectionalLight(math.NewVec3(-0.2, -1.0, -0.3))
	sun.Intensity = 0.4
	state.lights = append(state.lights, sun)

	state.lights = append(state.lights, metadata.NewSpotLight(math.NewVec3Zero(), math.NewVec3Forward()))
	state.flashlight = len(state.lights) - 1

	sm.CameraSystem.Orbit = true

	core.LogInfo("scene ready: %d objects, %d lights", len(state.objects), len(state.lights))
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	sm := g.SystemManager
	state.time += float32(deltaTime)

	sm.CameraSystem.Update(deltaTime)

	axis := math.NewVec3(1.0, 0.3, 0.5).Normalized()
	i := 0
	for _, obj := range state.objects {
		if !obj.rotates {
			continue
		}
		angle := math.DegToRad(20.0 * float32(i))
		obj.transform.SetRotation(math.NewQuatFromAxisAngle(axis, state.time*angle, false))
		i++
	}

	camera := sm.CameraSystem.DefaultCamera
	for j := range state.lights {
		state.lights[j].Color = state.lightColor
	}
	flashlight := &state.lights[state.flashlight]
	flashlight.Position = camera.Position()
	flashlight.Spot.Direction = camera.Forward()

	// Unchanged frames leave the uniform cache untouched.
	lamp, err := sm.MaterialSystem.Get(state.lightSrc)
	if err != nil {
		return err
	}
	lamp.SetProperty("lightColor", metadata.ColorProperty(state.lightColor.X, state.lightColor.Y, state.lightColor.Z))
	return nil
}

func (g *TestGame) Render(packet *metadata.RenderPacket, deltaTime float64) error {
	state := g.State.(*gameState)

	packet.Camera = g.SystemManager.CameraSystem.State()
	packet.Lights = state.lights
	packet.Ambient = state.ambient
	for _, obj := range state.objects {
		packet.Objects = append(packet.Objects, metadata.RenderObject{
			Name:      obj.name,
			Geometry:  state.cube,
			Material:  obj.material,
			Overrides: obj.overrides,
			Model:     obj.transform.GetWorld(),
		})
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	core.LogDebug("TestGame.Shutdown() called!")
	return nil
}
