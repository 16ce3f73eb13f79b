package shading

// Uniform names shared with the shader programs.
const (
	UniformViewProjection  = "u_viewprojection"
	UniformCameraPosition  = "u_camera_position"
	UniformModel           = "u_model"
	UniformColor           = "u_color"
	UniformAbsorption      = "u_absorption_coefficient"
	UniformScattering      = "u_scattering_coefficient"
	UniformEmission        = "u_emission_coefficient"
	UniformBoxMin          = "u_boxMin"
	UniformBoxMax          = "u_boxMax"
	UniformAmbientLight    = "u_ambient_light"
	UniformBackgroundColor = "u_background_color"
	UniformVolumeType      = "u_volume_type"
	UniformStepLength      = "u_step_length"
	UniformMaxLightSteps   = "u_max_light_steps"
	UniformNoiseScale      = "u_noise_scale"
	UniformNoiseDetail     = "u_noise_detail"
	UniformDensitySource   = "u_density_source"
	UniformDensityScale    = "u_density_scale"
	UniformConstantDensity = "u_constant_density"
	UniformIsotropy        = "u_isotropy_parameter"
	UniformJittering       = "u_jittering"
	UniformDensityTexture  = "u_density_texture"
	UniformIsoThreshold    = "u_iso_threshold"
	UniformGradientStep    = "u_gradient_step"
	UniformTexture         = "u_texture"
	UniformLightIntensity  = "u_light_intensity"
	UniformLightShininess  = "u_light_shininess"
	UniformLightColor      = "u_light_color"
)

// Texture units.
const (
	DensityTextureSlot = 0
	SurfaceTextureSlot = 1
)
